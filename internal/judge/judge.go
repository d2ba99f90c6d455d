// Package judge submits the collected memes to an external AI judge and
// parses the structured verdict.
//
// The external boundary is an OpenAI-compatible chat completions endpoint.
// When no API key is configured the client substitutes a fixed mock verdict
// instead of failing, so the surrounding flow stays exercisable without the
// external dependency.
package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mememadness/server/internal/game"
	"github.com/mememadness/server/internal/models"
)

var (
	// ErrJudgingFailed is the single user-facing judging failure. Transport,
	// service, and parse problems all normalize to it; the underlying detail
	// is logged, never returned.
	ErrJudgingFailed = errors.New("failed to get a valid judgment from the AI, please try again")

	// ErrBadResponse marks a response that arrived but did not match the
	// required shape (no winners array). It still reads as ErrJudgingFailed
	// to callers checking the normalized error.
	ErrBadResponse = fmt.Errorf("invalid response format: %w", ErrJudgingFailed)
)

// Submission is one meme handed to the judge.
type Submission struct {
	GroupName string
	Image     []byte
	MIMEType  string
}

// Client judges a round of submissions. Implementations return at most
// game.MaxWinners winners in the order the judge ranked them; zero winners
// means no winner was determined. The call suspends until the external
// service responds and is never retried automatically; retrying is the
// caller's decision.
type Client interface {
	Judge(ctx context.Context, submissions []Submission) ([]models.Winner, error)
}

// Config configures the judging client.
type Config struct {
	// APIKey authenticates against the judging endpoint. Empty means no
	// credential is configured; New then returns the mock client.
	APIKey string

	// Model names the vision-capable model to use.
	Model string

	// Endpoint is the chat completions URL. Defaults to the OpenAI API.
	Endpoint string

	// HTTPClient optionally overrides the transport. The default client
	// carries a 60 second timeout; the request is bounded even when the
	// caller passes a background context.
	HTTPClient *http.Client

	// Logger receives failure detail that is withheld from callers.
	Logger *slog.Logger
}

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
	requestTimeout  = 60 * time.Second
)

const systemPrompt = `You are an expert meme judge for the 'AI Meme Madness' competition. ` +
	`Your task is to evaluate a collection of memes based on three criteria: ` +
	`1. Humor, 2. Creativity, 3. Relevance to AI adoption in professional or personal life. ` +
	`Analyze all the provided memes and select the top 2 winning groups. ` +
	`For each winner, provide a brief justification for your choice. ` +
	`The memes are provided as a series of images, each associated with a group name.`

// New builds a judging client. Without an API key it returns the mock
// client so the game remains playable end to end.
func New(cfg Config) Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		cfg.Logger.Warn("no judge API key configured, using mock verdicts")
		return mockClient{}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	return &openAIClient{cfg: cfg}
}

// mockClient returns a fixed two-entry verdict. Placeholder for local play
// and tests when no credential is available.
type mockClient struct{}

func (mockClient) Judge(_ context.Context, _ []Submission) ([]models.Winner, error) {
	return []models.Winner{
		{GroupName: "Mock Winner 1", Justification: "This is a mock justification because the API key is missing."},
		{GroupName: "Mock Winner 2", Justification: "This is another mock justification. Please set your API key."},
	}, nil
}

type openAIClient struct {
	cfg Config
}

// chat completions request/response shapes, limited to the fields used.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// verdictSchema constrains the response to {winners: [{groupName, justification}]}.
var verdictSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"winners": {
			"type": "array",
			"description": "The top 2 winning groups.",
			"items": {
				"type": "object",
				"properties": {
					"groupName": {"type": "string", "description": "The name of the winning group."},
					"justification": {"type": "string", "description": "A brief explanation for why this group won."}
				},
				"required": ["groupName", "justification"],
				"additionalProperties": false
			}
		}
	},
	"required": ["winners"],
	"additionalProperties": false
}`)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type verdict struct {
	Winners []struct {
		GroupName     string `json:"groupName"`
		Justification string `json:"justification"`
	} `json:"winners"`
}

func (c *openAIClient) Judge(ctx context.Context, submissions []Submission) ([]models.Winner, error) {
	parts := []contentPart{}
	for _, sub := range submissions {
		parts = append(parts,
			contentPart{Type: "text", Text: "Meme from group: " + sub.GroupName},
			contentPart{Type: "image_url", ImageURL: &imageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", sub.MIMEType, base64.StdEncoding.EncodeToString(sub.Image)),
			}},
		)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: parts},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "judging_result",
				Strict: true,
				Schema: verdictSchema,
			},
		},
	})
	if err != nil {
		c.cfg.Logger.Error("could not encode judge request", "error", err)
		return nil, ErrJudgingFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		c.cfg.Logger.Error("could not build judge request", "error", err)
		return nil, ErrJudgingFailed
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential material goes only into the Authorization header and is
	// never echoed in errors or logs.
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		c.cfg.Logger.Error("judge request failed", "error", err)
		return nil, ErrJudgingFailed
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.cfg.Logger.Error("judge request rejected",
			"status", res.StatusCode,
			"body", strings.TrimSpace(string(detail)),
		)
		return nil, ErrJudgingFailed
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		c.cfg.Logger.Error("could not decode judge response", "error", err)
		return nil, ErrJudgingFailed
	}
	if len(payload.Choices) == 0 {
		c.cfg.Logger.Error("judge response contained no choices")
		return nil, ErrBadResponse
	}

	return parseVerdict(payload.Choices[0].Message.Content, c.cfg.Logger)
}

// parseVerdict extracts winners from the model's JSON content. A payload
// without a winners array is a format error; more than game.MaxWinners
// entries are truncated, preserving the judge's order.
func parseVerdict(content string, logger *slog.Logger) ([]models.Winner, error) {
	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		logger.Error("judge verdict is not valid JSON", "error", err)
		return nil, ErrBadResponse
	}
	if v.Winners == nil {
		logger.Error("judge verdict missing winners field")
		return nil, ErrBadResponse
	}

	winners := make([]models.Winner, 0, game.MaxWinners)
	for _, w := range v.Winners {
		if len(winners) == game.MaxWinners {
			break
		}
		winners = append(winners, models.Winner{
			GroupName:     w.GroupName,
			Justification: w.Justification,
		})
	}
	return winners, nil
}
