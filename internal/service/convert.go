package service

import (
	"time"

	"github.com/mememadness/server/internal/game"
	"github.com/mememadness/server/internal/models"
	"github.com/mememadness/server/internal/rpc"
)

func toRPCUser(u models.User) rpc.User {
	return rpc.User{ID: u.ID, Name: u.Name}
}

func fromRPCUser(u rpc.User) models.User {
	return models.User{ID: u.ID, Name: u.Name}
}

func toRPCMeme(m models.Meme) rpc.Meme {
	return rpc.Meme{
		GroupID:  m.GroupID,
		MIMEType: m.MIMEType,
		Preview:  m.Preview,
	}
}

func toRPCGroup(g models.Group) rpc.Group {
	members := make([]rpc.User, len(g.Members))
	for i, m := range g.Members {
		members[i] = toRPCUser(m)
	}
	out := rpc.Group{ID: g.ID, Name: g.Name, Members: members}
	if g.Meme != nil {
		meme := toRPCMeme(*g.Meme)
		out.Meme = &meme
	}
	return out
}

func toRPCWinners(winners []models.Winner) []rpc.Winner {
	out := make([]rpc.Winner, len(winners))
	for i, w := range winners {
		out[i] = rpc.Winner{GroupName: w.GroupName, Justification: w.Justification}
	}
	return out
}

func toRPCState(s game.State, now time.Time) rpc.State {
	out := rpc.State{
		Groups:      make([]rpc.Group, len(s.Groups)),
		GameStarted: s.GameStarted,
		Winners:     toRPCWinners(s.Winners),
		IsAdmin:     s.IsAdmin,
		TimeUp:      s.TimeUp(now),
	}
	for i, g := range s.Groups {
		out.Groups[i] = toRPCGroup(g)
	}
	if s.User != nil {
		user := toRPCUser(*s.User)
		out.User = &user
	}
	if s.TimerEndTime != 0 {
		end := s.TimerEndTime
		out.TimerEndTime = &end
		if !out.TimeUp {
			out.RemainingMinutes, out.RemainingSeconds = game.Countdown(end, now)
		}
	}
	return out
}
