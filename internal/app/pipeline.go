package app

import (
	"fmt"
	"log/slog"

	"github.com/dwizi/esg-advisor/internal/config"
	"github.com/dwizi/esg-advisor/internal/knowledge"
	"github.com/dwizi/esg-advisor/internal/llm"
	"github.com/dwizi/esg-advisor/internal/llm/anthropic"
	"github.com/dwizi/esg-advisor/internal/llm/openai"
	"github.com/dwizi/esg-advisor/internal/memory"
	"github.com/dwizi/esg-advisor/internal/reply"
	"github.com/dwizi/esg-advisor/internal/store"
)

// NewPipeline wires the reply service. A nil store disables summary lookups.
func NewPipeline(cfg config.Config, sqlStore *store.Store, logger *slog.Logger) (*reply.Service, error) {
	tables, err := knowledge.Default()
	if err != nil {
		return nil, fmt.Errorf("load knowledge tables: %w", err)
	}

	var fetcher reply.ContextFetcher
	if sqlStore != nil {
		fetcher = memory.New(sqlStore, memory.Config{
			Triggers: tables.PastTerms,
			Location: cfg.Location(),
		}, logger.With("component", "memory"))
	}

	return reply.New(reply.Dependencies{
		Tables:    tables,
		Generator: NewGenerator(cfg, logger),
		Context:   fetcher,
		Logger:    logger.With("component", "reply"),
	}, reply.Config{
		MaxTokens:         cfg.LLMMaxTokens,
		Temperature:       cfg.LLMTemperature,
		GenerationTimeout: cfg.GenerationTimeout(),
	}), nil
}

func NewGenerator(cfg config.Config, logger *slog.Logger) llm.Generator {
	switch cfg.LLMProvider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout(),
		}, logger.With("component", "llm-anthropic"))
	default:
		return openai.New(openai.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout(),
		}, logger.With("component", "llm-openai"))
	}
}
