package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shenprabu/FileReadAI/internal/common"
	"github.com/shenprabu/FileReadAI/internal/provider"
	"github.com/shenprabu/FileReadAI/internal/provider/anthropic"
	"github.com/shenprabu/FileReadAI/internal/provider/gemini"
	"github.com/shenprabu/FileReadAI/internal/provider/openai"
)

// providers prints the known extraction backends and whether each has a
// credential available right now.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	registry := provider.NewRegistry(logger,
		openai.NewClient(openai.Config{APIKey: cfg.Providers.OpenAIKey, Model: cfg.Providers.OpenAIModel}, logger),
		anthropic.NewClient(anthropic.Config{APIKey: cfg.Providers.AnthropicKey, Model: cfg.Providers.AnthropicModel}, logger),
		gemini.NewClient(gemini.Config{APIKey: cfg.Providers.GeminiKey, Model: cfg.Providers.GeminiModel}, logger),
	)

	active := registry.ActiveKey()
	for _, info := range registry.List() {
		marker := " "
		if info.Key == active {
			marker = "*"
		}
		state := "not configured"
		if info.Configured {
			state = "configured"
		}
		fmt.Printf("%s %-10s %-18s %s\n", marker, info.Key, info.Name, state)
	}
}
