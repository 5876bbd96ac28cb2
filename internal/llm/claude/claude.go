package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"fundamentals-agent/internal/llm"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/trace"
)

const (
	DefaultModel     = "claude-3-5-sonnet-latest"
	defaultMaxTokens = 1024
)

// Client calls the Anthropic Messages API
type Client struct {
	client    anthropic.Client
	cfg       llm.Config
	maxTokens int64
}

var _ llm.Completer = (*Client)(nil)

// New creates a Claude completer. Extra request options (base URL, retries) are passed through.
func New(apiKey string, cfg llm.Config, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client:    anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		cfg:       cfg,
		maxTokens: maxTokens,
	}, nil
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude.Complete")
	defer span.End()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(c.cfg.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	logger.Debug(ctx, "Claude response received",
		"model", c.cfg.Model,
		"latency_ms", time.Since(start).Milliseconds(),
		"response_length", out.Len(),
	)

	if out.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return out.String(), nil
}
