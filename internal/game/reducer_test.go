package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/mememadness/server/internal/models"
)

func alice() models.User {
	return models.User{ID: "user-alice", Name: "Alice"}
}

func bob() models.User {
	return models.User{ID: "user-bob", Name: "Bob"}
}

func TestSetUser(t *testing.T) {
	s := Reduce(Initial(), SetUser{User: alice()})
	if s.User == nil || s.User.Name != "Alice" {
		t.Fatalf("expected current user Alice, got %+v", s.User)
	}

	// SetUser replaces, never accumulates.
	s = Reduce(s, SetUser{User: bob()})
	if s.User.ID != "user-bob" {
		t.Errorf("expected user replaced by Bob, got %s", s.User.ID)
	}
}

func TestCreateGroup_CapsAtMaxGroups(t *testing.T) {
	s := Initial()
	for i := 0; i < MaxGroups+3; i++ {
		s = Reduce(s, CreateGroup{
			ID:      fmt.Sprintf("group-%d", i),
			Name:    fmt.Sprintf("Group %d", i),
			Creator: alice(),
		})
		if len(s.Groups) > MaxGroups {
			t.Fatalf("groups exceeded cap after %d creations: %d", i+1, len(s.Groups))
		}
	}

	if len(s.Groups) != MaxGroups {
		t.Errorf("expected exactly %d groups, got %d", MaxGroups, len(s.Groups))
	}

	// The 9th creation must have been a complete no-op.
	last := s.Groups[MaxGroups-1]
	if last.ID != fmt.Sprintf("group-%d", MaxGroups-1) {
		t.Errorf("unexpected last group: %s", last.ID)
	}
}

func TestCreateGroup_SingleMember(t *testing.T) {
	s := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})

	if len(s.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(s.Groups))
	}
	g := s.Groups[0]
	if len(g.Members) != 1 || g.Members[0].ID != "user-alice" {
		t.Errorf("expected creator as sole member, got %+v", g.Members)
	}
	if g.Meme != nil {
		t.Error("new group should have no submission")
	}
}

func TestJoinGroup(t *testing.T) {
	s := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})

	s = Reduce(s, JoinGroup{GroupID: "g1", User: bob()})
	if n := len(s.Groups[0].Members); n != 2 {
		t.Fatalf("expected 2 members, got %d", n)
	}
	if s.Groups[0].Members[1].ID != "user-bob" {
		t.Error("expected Bob appended in join order")
	}
}

func TestJoinGroup_UnknownIDIsNoOp(t *testing.T) {
	before := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})
	after := Reduce(before, JoinGroup{GroupID: "nope", User: bob()})

	if len(after.Groups[0].Members) != 1 {
		t.Errorf("unknown group join changed membership: %+v", after.Groups[0].Members)
	}
}

func TestUploadMeme_ReplacesAndDeleteClears(t *testing.T) {
	s := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})

	first := models.NewMeme("g1", []byte("first"), models.MIMETypePNG)
	second := models.NewMeme("g1", []byte("second"), models.MIMETypeJPEG)

	s = Reduce(s, UploadMeme{Meme: first})
	s = Reduce(s, UploadMeme{Meme: second})

	g := s.FindGroup("g1")
	if g.Meme == nil {
		t.Fatal("expected a submission")
	}
	if string(g.Meme.Data) != "second" {
		t.Errorf("second upload should replace, not append: got %q", g.Meme.Data)
	}
	if g.Meme.MIMEType != models.MIMETypeJPEG {
		t.Errorf("unexpected mime type %s", g.Meme.MIMEType)
	}

	s = Reduce(s, DeleteMeme{GroupID: "g1"})
	if s.FindGroup("g1").Meme != nil {
		t.Error("delete should clear the submission")
	}
}

func TestUploadMeme_UnknownGroupIsNoOp(t *testing.T) {
	s := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})
	s = Reduce(s, UploadMeme{Meme: models.NewMeme("ghost", []byte("x"), models.MIMETypePNG)})

	if s.FindGroup("g1").Meme != nil {
		t.Error("upload for unknown group must not touch other groups")
	}
}

func TestStartGame_ClearsWinners(t *testing.T) {
	s := Initial()
	s = Reduce(s, SetWinners{Winners: []models.Winner{{GroupName: "Old", Justification: "stale"}}})
	end := time.Now().Add(20 * time.Minute).UnixMilli()

	s = Reduce(s, StartGame{TimerEndTime: end})

	if !s.GameStarted {
		t.Error("expected GameStarted true")
	}
	if s.TimerEndTime != end {
		t.Errorf("expected timer end %d, got %d", end, s.TimerEndTime)
	}
	if len(s.Winners) != 0 {
		t.Errorf("StartGame must clear prior winners, got %+v", s.Winners)
	}
}

func TestResetGame(t *testing.T) {
	populated := func() State {
		s := Reduce(Initial(), SetUser{User: alice()})
		s = Reduce(s, CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})
		s = Reduce(s, UploadMeme{Meme: models.NewMeme("g1", []byte("x"), models.MIMETypePNG)})
		s = Reduce(s, StartGame{TimerEndTime: time.Now().Add(time.Minute).UnixMilli()})
		s = Reduce(s, SetWinners{Winners: []models.Winner{{GroupName: "The Memers", Justification: "funny"}}})
		return s
	}

	t.Run("non-admin yields full initial state", func(t *testing.T) {
		s := Reduce(populated(), ResetGame{})
		if s.User != nil || s.Groups != nil || s.GameStarted || s.TimerEndTime != 0 || s.Winners != nil || s.IsAdmin {
			t.Errorf("expected initial state, got %+v", s)
		}
	})

	t.Run("admin keeps identity", func(t *testing.T) {
		s := Reduce(populated(), AdminLogin{})
		s = Reduce(s, ResetGame{})
		if !s.IsAdmin {
			t.Error("reset must preserve admin flag")
		}
		if s.User == nil || s.User.ID != "user-alice" {
			t.Error("reset must preserve admin session user")
		}
		if len(s.Groups) != 0 || s.GameStarted || s.TimerEndTime != 0 || len(s.Winners) != 0 {
			t.Errorf("reset must still wipe the game: %+v", s)
		}
	})
}

func TestAdminLogout(t *testing.T) {
	s := Reduce(Initial(), SetUser{User: alice()})
	s = Reduce(s, AdminLogin{})
	s = Reduce(s, AdminLogout{})

	if s.IsAdmin {
		t.Error("expected IsAdmin cleared")
	}
	if s.User != nil {
		t.Error("logout must clear the current user")
	}
}

func TestSyncGameState_TouchesOnlyTimerFields(t *testing.T) {
	s := Reduce(Initial(), SetUser{User: alice()})
	s = Reduce(s, CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})
	s = Reduce(s, SetWinners{Winners: []models.Winner{{GroupName: "The Memers", Justification: "funny"}}})

	end := time.Now().Add(5 * time.Minute).UnixMilli()
	next := Reduce(s, SyncGameState{GameStarted: true, TimerEndTime: end})

	if !next.GameStarted || next.TimerEndTime != end {
		t.Errorf("sync did not apply timer fields: %+v", next)
	}
	if len(next.Groups) != 1 || next.Groups[0].ID != "g1" {
		t.Error("sync must not mutate groups")
	}
	if len(next.Winners) != 1 {
		t.Error("sync must not mutate winners")
	}
	if next.User == nil || next.User.ID != "user-alice" {
		t.Error("sync must not mutate the current user")
	}
}

func TestReduce_UnknownActionIsNoOp(t *testing.T) {
	s := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})

	if got := Reduce(s, nil); len(got.Groups) != 1 || got.GameStarted {
		t.Errorf("nil action must return state unchanged, got %+v", got)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	base := Reduce(Initial(), CreateGroup{ID: "g1", Name: "The Memers", Creator: alice()})

	_ = Reduce(base, JoinGroup{GroupID: "g1", User: bob()})
	if len(base.Groups[0].Members) != 1 {
		t.Error("JoinGroup mutated the input state")
	}

	_ = Reduce(base, UploadMeme{Meme: models.NewMeme("g1", []byte("x"), models.MIMETypePNG)})
	if base.Groups[0].Meme != nil {
		t.Error("UploadMeme mutated the input state")
	}
}

func TestCountdown(t *testing.T) {
	now := time.Now()
	end := now.Add(20 * time.Minute).UnixMilli()

	// Immediately after starting a 20 minute game the display reads 19:59
	// (the first whole second has not yet elapsed on the minute boundary).
	m, sec := Countdown(end, now.Add(50*time.Millisecond))
	if m != 19 || sec != 59 {
		t.Errorf("expected 19:59, got %02d:%02d", m, sec)
	}

	// Past the end the countdown clamps to zero.
	m, sec = Countdown(end, now.Add(21*time.Minute))
	if m != 0 || sec != 0 {
		t.Errorf("expected 00:00 after expiry, got %02d:%02d", m, sec)
	}
}

func TestTimeUp(t *testing.T) {
	now := time.Now()
	s := Reduce(Initial(), StartGame{TimerEndTime: now.Add(20 * time.Minute).UnixMilli()})

	if s.TimeUp(now) {
		t.Error("timer should not be up immediately after start")
	}
	if !s.TimeUp(now.Add(20*time.Minute + time.Second)) {
		t.Error("timer should be up past the end time")
	}

	// No timer set means never up.
	lobby := Initial()
	if lobby.TimeUp(now) {
		t.Error("lobby state has no timer to expire")
	}
}
