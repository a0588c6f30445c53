package openai

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

const apiKeyEnv = "OPENAI_API_KEY"

// Config for the OpenAI backend.
type Config struct {
	APIKey      string        // if empty, read from env OPENAI_API_KEY per call
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g. "gpt-4o-mini"
	Temperature float32       // 0..2
	MaxTokens   int           // completion cap
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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

func (c *Client) Key() string  { return "openai" }
func (c *Client) Name() string { return "OpenAI" }

func (c *Client) IsConfigured() bool {
	return c.apiKey() != ""
}

func (c *Client) apiKey() string {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	return os.Getenv(apiKeyEnv)
}

// Extract implements provider.Backend over chat/completions with an
// inline data-URL image part.
func (c *Client) Extract(ctx context.Context, img provider.PageImage) (provider.RawExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("openai.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page", img.Page,
		"image_bytes", len(img.Data),
		"mime", img.MIME,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": provider.BuildExtractionPrompt()},
					{"type": "image_url", "image_url": map[string]string{
						"url": provider.EncodeDataURL(img.Data, img.MIME),
					}},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey()}
	raw, _, err := provider.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("openai.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	var cc struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return provider.RawExtraction{}, fmt.Errorf("%w: decode openai response: %v", common.ErrExtractionParse, err)
	}
	if len(cc.Choices) == 0 {
		return provider.RawExtraction{}, fmt.Errorf("%w: no choices in openai response", common.ErrExtractionParse)
	}
	choice := cc.Choices[0]
	// A truncated completion never parses; reject before the parser sees it.
	if choice.FinishReason != "" && choice.FinishReason != "stop" {
		c.logger.Error("openai.extract.truncated", "req_id", rid, "finish_reason", choice.FinishReason)
		return provider.RawExtraction{}, fmt.Errorf("%w: response truncated (finish_reason=%s)", common.ErrExtractionParse, choice.FinishReason)
	}

	out, err := provider.ParseExtraction(choice.Message.Content, c.logger)
	if err != nil {
		c.logger.Error("openai.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	c.logger.Info("openai.extract.ok",
		"req_id", rid,
		"page", img.Page,
		"fields", len(out.Fields),
		"form_title", out.FormTitle,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
