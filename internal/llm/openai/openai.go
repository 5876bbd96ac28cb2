package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fundamentals-agent/internal/api"
	"fundamentals-agent/internal/llm"
	"fundamentals-agent/internal/trace"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Client calls the OpenAI chat completions endpoint
type Client struct {
	http *api.Client
	cfg  llm.Config
}

var _ llm.Completer = (*Client)(nil)

// New creates an OpenAI completer; an empty baseURL uses the public endpoint
func New(apiKey, baseURL string, cfg llm.Config) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(baseURL, "/")),
		api.WithHeader("Authorization", "Bearer "+apiKey),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Timeout))
	}
	return &Client{http: api.NewClient(opts...), cfg: cfg}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai.Complete")
	defer span.End()

	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	resp, err := c.http.POST(ctx, "/chat/completions", chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}

	var r chatResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}
