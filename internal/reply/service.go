// Package reply turns one incoming chat message into the final reply text.
package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/esg-advisor/internal/classify"
	"github.com/dwizi/esg-advisor/internal/format"
	"github.com/dwizi/esg-advisor/internal/knowledge"
	"github.com/dwizi/esg-advisor/internal/llm"
)

const defaultGenerationTimeout = 30 * time.Second

type ContextFetcher interface {
	FetchRecentSummariesIfNeeded(ctx context.Context, message string) string
}

type Config struct {
	MaxTokens         int
	Temperature       float64
	GenerationTimeout time.Duration
}

type Dependencies struct {
	Tables    *knowledge.Tables
	Generator llm.Generator
	Context   ContextFetcher
	Formatter *format.Formatter

	// Source drives the canned greeting pick; nil uses the process-wide generator.
	Source format.Source
	Logger *slog.Logger
}

type Service struct {
	tables     *knowledge.Tables
	classifier *classify.Classifier
	generator  llm.Generator
	context    ContextFetcher
	formatter  *format.Formatter
	source     format.Source
	cfg        Config
	logger     *slog.Logger
}

// Route is the classification outcome for one message.
type Route struct {
	Intent        classify.Intent
	Domain        knowledge.DomainTag
	NeedsFollowup bool
}

func New(deps Dependencies, cfg Config) *Service {
	if cfg.MaxTokens < 1 {
		cfg.MaxTokens = llm.DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = llm.DefaultTemperature
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}
	formatter := deps.Formatter
	if formatter == nil {
		formatter = format.New(deps.Source)
	}
	source := deps.Source
	if source == nil {
		source = format.DefaultSource()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tables:     deps.Tables,
		classifier: classify.New(deps.Tables),
		generator:  deps.Generator,
		context:    deps.Context,
		formatter:  formatter,
		source:     source,
		cfg:        cfg,
		logger:     logger,
	}
}

// Classify runs the keyword rules without generating a reply.
func (s *Service) Classify(message string) Route {
	route := Route{Intent: s.classifier.RecognizeIntent(message)}
	if route.Intent == classify.IntentChat {
		return route
	}
	route.Domain = s.classifier.ClassifyQuestion(message)
	route.NeedsFollowup = s.classifier.NeedsFollowup(message)
	return route
}

// ProduceReply always returns non-empty text. Backend failures become Apology and
// formatting failures fall back to the unformatted backend reply.
func (s *Service) ProduceReply(ctx context.Context, message string) (reply string) {
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("reply pipeline panicked", "panic", fmt.Sprint(recovered))
			reply = Apology
		}
	}()

	route := s.Classify(message)
	if route.Intent == classify.IntentChat {
		s.logger.Info("casual message answered", "intent", route.Intent)
		return s.pickCanned()
	}

	summaries := ""
	if s.context != nil {
		summaries = s.context.FetchRecentSummariesIfNeeded(ctx, message)
	}
	systemPrompt := ComposeSystemPrompt(PromptParts{
		Knowledge:     s.tables.BuildKnowledgePrompt(route.Domain),
		Summaries:     summaries,
		NeedsFollowup: route.NeedsFollowup,
	})

	raw, err := s.generate(ctx, systemPrompt, message)
	if err != nil {
		s.logger.Error("generation failed", "error", err, "domain", route.Domain)
		return Apology
	}

	formatted, err := s.formatter.Format(raw)
	if err != nil {
		s.logger.Warn("reply left unformatted", "error", err, "domain", route.Domain)
	}
	s.logger.Info(
		"professional message answered",
		"domain", route.Domain,
		"followup", route.NeedsFollowup,
		"with_summaries", summaries != "",
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return formatted
}

func (s *Service) generate(ctx context.Context, systemPrompt, message string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", llm.ErrUnavailable)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	raw, err := s.generator.Reply(callCtx, llm.MessageInput{
		SystemPrompt: systemPrompt,
		Text:         message,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s: %v", llm.ErrGeneration, s.cfg.GenerationTimeout, err)
		}
		return "", err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty reply", llm.ErrGeneration)
	}
	return raw, nil
}
