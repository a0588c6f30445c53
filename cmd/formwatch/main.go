package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/export"
	"github.com/shenprabu/FileReadAI/internal/fields"
	"github.com/shenprabu/FileReadAI/internal/history"
	"github.com/shenprabu/FileReadAI/internal/ingest"
	"github.com/shenprabu/FileReadAI/internal/pipeline"
	"github.com/shenprabu/FileReadAI/internal/provider"
	"github.com/shenprabu/FileReadAI/internal/provider/anthropic"
	"github.com/shenprabu/FileReadAI/internal/provider/gemini"
	"github.com/shenprabu/FileReadAI/internal/provider/openai"
	"github.com/shenprabu/FileReadAI/internal/raster"
)

func main() {
	var (
		dir         = flag.String("dir", "", "directory to watch for form documents (required)")
		outDir      = flag.String("out", "", "output directory for JSON exports (defaults to the watched directory)")
		initialScan = flag.Bool("scan", false, "also process files already present in the directory")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *dir == "" {
		if _, err := fmt.Fprintln(os.Stderr, "Error: --dir is required"); err != nil {
			fmt.Println("Error: --dir is required")
		}
		os.Exit(2)
	}
	if *outDir == "" {
		*outDir = *dir
	}

	cfg := common.LoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := provider.NewRegistry(logger,
		openai.NewClient(openai.Config{APIKey: cfg.Providers.OpenAIKey, Model: cfg.Providers.OpenAIModel, Timeout: cfg.Providers.Timeout}, logger),
		anthropic.NewClient(anthropic.Config{APIKey: cfg.Providers.AnthropicKey, Model: cfg.Providers.AnthropicModel, Timeout: cfg.Providers.Timeout}, logger),
		gemini.NewClient(gemini.Config{APIKey: cfg.Providers.GeminiKey, Model: cfg.Providers.GeminiModel, Timeout: cfg.Providers.Timeout}, logger),
	)

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
	svc := export.NewService(logger)

	evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{*dir},
		InitialScan: *initialScan,
	})
	if err != nil {
		logger.Error("start watcher", "dir", *dir, "error", err)
		os.Exit(1)
	}

	logger.Info("watching for form documents", "dir", *dir, "provider", registry.ActiveName())

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case werr, ok := <-errCh:
			if ok {
				logger.Error("watcher error", "error", werr)
			}
		case path, ok := <-evCh:
			if !ok {
				return
			}
			process(ctx, logger, p, svc, path, *outDir)
		}
	}
}

// process runs one document through the pipeline and writes its JSON
// export next to the watched tree. Failures are logged and the watcher
// moves on; one bad document must not stop the loop.
func process(ctx context.Context, logger *slog.Logger, p *pipeline.Pipeline, svc *export.Service, path, outDir string) {
	doc, err := p.LoadDocument(path)
	if err != nil {
		logger.Error("skip document", "path", path, "error", err)
		return
	}

	data, err := p.Run(ctx)
	if err != nil {
		logger.Error("extraction failed", "file", doc.Filename, "error", err, "partial_fields", len(data.Fields))
		return
	}

	payload, err := svc.ToJSON(data)
	if err != nil {
		logger.Error("export failed", "file", doc.Filename, "error", err)
		return
	}
	outPath := filepath.Join(outDir, export.Filename(doc.Filename, "json", data.ExtractedAt))
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		logger.Error("write export", "path", outPath, "error", err)
		return
	}
	logger.Info("processed", "file", doc.Filename, "fields", len(data.Fields), "output", outPath)
}
