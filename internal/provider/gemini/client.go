package gemini

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

const apiKeyEnv = "GEMINI_API_KEY"

// Config for the Gemini backend. Gemini's free tier has a low
// requests-per-minute cap; the pipeline's strictly sequential paging is
// what keeps this backend usable without explicit throttling.
type Config struct {
	APIKey          string        // if empty, read from env GEMINI_API_KEY per call
	BaseURL         string        // default https://generativelanguage.googleapis.com/v1beta
	Model           string        // e.g. "gemini-1.5-flash-latest"
	Temperature     float32       // 0..2
	MaxOutputTokens int           // completion cap
	Timeout         time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash-latest"
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 4096
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

func (c *Client) Key() string  { return "gemini" }
func (c *Client) Name() string { return "Google Gemini" }

func (c *Client) IsConfigured() bool {
	return c.apiKey() != ""
}

func (c *Client) apiKey() string {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	return os.Getenv(apiKeyEnv)
}

// Extract implements provider.Backend over generateContent with an
// inlineData image part.
func (c *Client) Extract(ctx context.Context, img provider.PageImage) (provider.RawExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("gemini.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page", img.Page,
		"image_bytes", len(img.Data),
		"mime", img.MIME,
	)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": provider.BuildExtractionPrompt()},
					{"inlineData": map[string]string{
						"mimeType": img.MIME,
						"data":     provider.EncodeBase64(img.Data),
					}},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     c.cfg.Temperature,
			"maxOutputTokens": c.cfg.MaxOutputTokens,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.apiKey())
	raw, _, err := provider.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		c.logger.Error("gemini.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	var gc struct {
		Candidates []struct {
			FinishReason string `json:"finishReason"`
			Content      struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		return provider.RawExtraction{}, fmt.Errorf("%w: decode gemini response: %v", common.ErrExtractionParse, err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		return provider.RawExtraction{}, fmt.Errorf("%w: empty gemini response", common.ErrExtractionParse)
	}
	cand := gc.Candidates[0]
	if cand.FinishReason != "" && cand.FinishReason != "STOP" {
		c.logger.Error("gemini.extract.truncated", "req_id", rid, "finish_reason", cand.FinishReason)
		return provider.RawExtraction{}, fmt.Errorf("%w: response truncated (finishReason=%s)", common.ErrExtractionParse, cand.FinishReason)
	}

	out, err := provider.ParseExtraction(cand.Content.Parts[0].Text, c.logger)
	if err != nil {
		c.logger.Error("gemini.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.RawExtraction{}, err
	}

	c.logger.Info("gemini.extract.ok",
		"req_id", rid,
		"page", img.Page,
		"fields", len(out.Fields),
		"form_title", out.FormTitle,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
