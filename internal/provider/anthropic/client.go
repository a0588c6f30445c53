package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/provider"
)

const apiKeyEnv = "ANTHROPIC_API_KEY"

// Config for the Anthropic backend.
type Config struct {
	APIKey    string        // if empty, read from env ANTHROPIC_API_KEY per call
	BaseURL   string        // default https://api.anthropic.com/v1
	Model     string        // e.g. "claude-3-5-sonnet-20241022"
	MaxTokens int           // completion cap
	Timeout   time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Key() string  { return "anthropic" }
func (c *Client) Name() string { return "Anthropic Claude" }

func (c *Client) IsConfigured() bool {
	return c.apiKey() != ""
}

func (c *Client) apiKey() string {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	return os.Getenv(apiKeyEnv)
}

// Extract implements provider.Backend over the messages API with a
// base64 image source block.
func (c *Client) Extract(ctx context.Context, img provider.PageImage) (provider.RawExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("anthropic.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page", img.Page,
		"image_bytes", len(img.Data),
		"mime", img.MIME,
	)

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "image", "source": map[string]string{
						"type":       "base64",
						"media_type": img.MIME,
						"data":       provider.EncodeBase64(img.Data),
					}},
					{"type": "text", "text": provider.BuildExtractionPrompt()},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"
	headers := map[string]string{
		"x-api-key":         c.apiKey(),
		"anthropic-version": "2023-06-01",
	}
	raw, _, err := provider.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("anthropic.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	var msg struct {
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return provider.RawExtraction{}, fmt.Errorf("%w: decode anthropic response: %v", common.ErrExtractionParse, err)
	}
	if len(msg.Content) == 0 {
		return provider.RawExtraction{}, fmt.Errorf("%w: empty anthropic response", common.ErrExtractionParse)
	}
	if msg.StopReason == "max_tokens" {
		c.logger.Error("anthropic.extract.truncated", "req_id", rid, "stop_reason", msg.StopReason)
		return provider.RawExtraction{}, fmt.Errorf("%w: response truncated (stop_reason=%s)", common.ErrExtractionParse, msg.StopReason)
	}

	out, err := provider.ParseExtraction(msg.Content[0].Text, c.logger)
	if err != nil {
		c.logger.Error("anthropic.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	c.logger.Info("anthropic.extract.ok",
		"req_id", rid,
		"page", img.Page,
		"fields", len(out.Fields),
		"form_title", out.FormTitle,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
