package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mememadness/server/internal/models"
)

func testSubmissions() []Submission {
	return []Submission{
		{GroupName: "The Memers", Image: []byte("fake-png"), MIMEType: models.MIMETypePNG},
		{GroupName: "Prompt Wizards", Image: []byte("fake-jpeg"), MIMEType: models.MIMETypeJPEG},
	}
}

// chatServer fakes the completions endpoint, replying with the given
// message content.
func chatServer(t *testing.T, content string, capture *chatRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func newTestClient(t *testing.T, endpoint string) Client {
	t.Helper()

	return New(Config{
		APIKey:   "test-key",
		Endpoint: endpoint,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestJudgeRequestShape(t *testing.T) {
	var captured chatRequest
	srv := chatServer(t, `{"winners":[]}`, &captured)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message should be the system instruction, got %q", captured.Messages[0].Role)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_schema" {
		t.Error("expected a json_schema response format")
	}

	// The user message carries a label/image pair per submission.
	parts, ok := captured.Messages[1].Content.([]any)
	if !ok {
		t.Fatalf("expected content parts array, got %T", captured.Messages[1].Content)
	}
	if len(parts) != 4 {
		t.Fatalf("expected 4 content parts for 2 submissions, got %d", len(parts))
	}
	label := parts[0].(map[string]any)
	if label["text"] != "Meme from group: The Memers" {
		t.Errorf("unexpected label part: %v", label)
	}
	image := parts[1].(map[string]any)
	url := image["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("expected base64 data URL, got %.40s", url)
	}
}

func TestJudgeTruncatesToTwoWinners(t *testing.T) {
	srv := chatServer(t, `{"winners":[
		{"groupName":"First","justification":"a"},
		{"groupName":"Second","justification":"b"},
		{"groupName":"Third","justification":"c"}
	]}`, nil)
	defer srv.Close()

	winners, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}

	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	// Relative order preserved, no local re-ranking.
	if winners[0].GroupName != "First" || winners[1].GroupName != "Second" {
		t.Errorf("unexpected winners: %+v", winners)
	}
}

func TestJudgeEmptyWinnersIsValid(t *testing.T) {
	srv := chatServer(t, `{"winners":[]}`, nil)
	defer srv.Close()

	winners, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if len(winners) != 0 {
		t.Errorf("expected no winner determined, got %+v", winners)
	}
}

func TestJudgeMissingWinnersFieldIsFormatError(t *testing.T) {
	srv := chatServer(t, `{"champions":[{"groupName":"X"}]}`, nil)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected format error, got %v", err)
	}
	// Format errors still read as the normalized judging failure.
	if !errors.Is(err, ErrJudgingFailed) {
		t.Errorf("format error should wrap the normalized failure, got %v", err)
	}
}

func TestJudgeGarbageContentIsFormatError(t *testing.T) {
	srv := chatServer(t, `definitely not json`, nil)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestJudgeServiceErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"secret internal detail"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if !errors.Is(err, ErrJudgingFailed) {
		t.Fatalf("expected normalized failure, got %v", err)
	}
	// No internal detail leaks past the human-readable message.
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaked internal detail: %v", err)
	}
}

func TestJudgeTransportErrorIsNormalized(t *testing.T) {
	srv := chatServer(t, "", nil)
	srv.Close() // immediately, so the dial fails

	_, err := newTestClient(t, srv.URL).Judge(context.Background(), testSubmissions())
	if !errors.Is(err, ErrJudgingFailed) {
		t.Errorf("expected normalized failure, got %v", err)
	}
}

func TestNewWithoutKeyReturnsMockVerdict(t *testing.T) {
	client := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	winners, err := client.Judge(context.Background(), testSubmissions())
	if err != nil {
		t.Fatalf("mock judge should not fail: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("expected the fixed two-entry mock verdict, got %d", len(winners))
	}
	if winners[0].GroupName != "Mock Winner 1" {
		t.Errorf("unexpected mock winner: %+v", winners[0])
	}
}
