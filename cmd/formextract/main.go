package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/export"
	"github.com/shenprabu/FileReadAI/internal/fields"
	"github.com/shenprabu/FileReadAI/internal/history"
	"github.com/shenprabu/FileReadAI/internal/pipeline"
	"github.com/shenprabu/FileReadAI/internal/provider"
	"github.com/shenprabu/FileReadAI/internal/provider/anthropic"
	"github.com/shenprabu/FileReadAI/internal/provider/gemini"
	"github.com/shenprabu/FileReadAI/internal/provider/openai"
	"github.com/shenprabu/FileReadAI/internal/raster"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file        = flag.String("file", "", "form document to extract (pdf/jpg/png/webp, required)")
		providerKey = flag.String("provider", "", "provider key to use (openai|anthropic|gemini; default: first configured)")
		format      = flag.String("format", "json", "export format: json|csv|xlsx")
		outDir      = flag.String("out", "", "output directory (defaults to the document's directory)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(2)
	}
	if *outDir == "" {
		*outDir = filepath.Dir(*file)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	registry := buildRegistry(cfg, logger)
	if *providerKey != "" {
		if err := registry.SetActive(*providerKey); err != nil {
			logger.Error("select provider", "key", *providerKey, "error", err)
			os.Exit(2)
		}
	}

	var hist history.Store = history.NewMemStore(cfg.History.Limit)
	if cfg.History.DBPath != "" {
		s, err := history.OpenSQLite(ctx, cfg.History.DBPath, cfg.History.Limit, logger)
		if err != nil {
			logger.Error("open history db", "path", cfg.History.DBPath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = s.Close() }()
		hist = s
	}

	rz := raster.NewRasterizer(raster.Config{
		Pdftoppm:    cfg.Raster.Pdftoppm,
		DPI:         cfg.Raster.DPI,
		JPEGQuality: cfg.Raster.JPEGQuality,
		MaxPages:    cfg.Raster.MaxPages,
	}, logger)

	p := pipeline.New(logger, registry, rz, fields.NewStore(logger), hist)

	doc, err := p.LoadDocument(*file)
	if err != nil {
		logger.Error("load document", "file", *file, "error", err)
		os.Exit(1)
	}
	logger.Info("document loaded", "file", doc.Filename, "pages", doc.Pages, "provider", registry.ActiveName())

	data, err := p.Run(ctx)
	if err != nil {
		logger.Error("extraction failed", "file", doc.Filename, "error", err,
			"partial_fields", len(data.Fields))
		os.Exit(1)
	}

	svc := export.NewService(logger)
	var payload []byte
	switch *format {
	case "json":
		payload, err = svc.ToJSON(data)
	case "csv":
		var s string
		s, err = svc.ToCSV(data)
		payload = []byte(s)
	case "xlsx":
		payload, err = svc.ToXLSX(data)
	default:
		printError("Error: unknown --format %q (json|csv|xlsx)\n", *format)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("export failed", "format", *format, "error", err)
		os.Exit(1)
	}

	outPath := filepath.Join(*outDir, export.Filename(doc.Filename, *format, data.ExtractedAt))
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		logger.Error("write export", "path", outPath, "error", err)
		os.Exit(1)
	}

	logger.Info("extraction complete",
		"file", doc.Filename,
		"pages", doc.Pages,
		"fields", len(data.Fields),
		"form_title", data.FormTitle,
		"output", outPath,
	)
}

func buildRegistry(cfg *common.Config, logger *slog.Logger) *provider.Registry {
	return provider.NewRegistry(logger,
		openai.NewClient(openai.Config{
			APIKey:  cfg.Providers.OpenAIKey,
			Model:   cfg.Providers.OpenAIModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
		anthropic.NewClient(anthropic.Config{
			APIKey:  cfg.Providers.AnthropicKey,
			Model:   cfg.Providers.AnthropicModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
		gemini.NewClient(gemini.Config{
			APIKey:  cfg.Providers.GeminiKey,
			Model:   cfg.Providers.GeminiModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
	)
}
