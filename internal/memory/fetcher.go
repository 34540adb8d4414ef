// Package memory injects recent daily conversation summaries into a reply when the user
// refers back to earlier discussions.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/esg-advisor/internal/knowledge"
	"github.com/dwizi/esg-advisor/internal/store"
)

var ErrStoreUnavailable = errors.New("summary store unavailable")

const (
	// lookbackDays is the trailing window before today; today itself is included.
	lookbackDays  = 3
	summaryHeader = "以下是最近幾天的對話摘要，可作為回答時的背景參考："
)

type SummaryStore interface {
	ListDailySummaries(ctx context.Context, from, to time.Time) ([]store.DailySummary, error)
}

type Config struct {
	Triggers []string
	Location *time.Location
	Now      func() time.Time
}

type Fetcher struct {
	store    SummaryStore
	triggers []string
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func New(summaries SummaryStore, cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		store:    summaries,
		triggers: cfg.Triggers,
		location: cfg.Location,
		now:      cfg.Now,
		logger:   logger,
	}
}

// FetchRecentSummariesIfNeeded returns formatted summaries from the last few days when
// message refers to past conversations, and "" otherwise. Store failures yield "".
func (f *Fetcher) FetchRecentSummariesIfNeeded(ctx context.Context, message string) string {
	if !knowledge.ContainsAny(message, f.triggers) {
		return ""
	}
	summaries, err := f.recent(ctx)
	if err != nil {
		f.logger.Warn("recent summaries skipped", "error", err)
		return ""
	}
	return FormatSummaries(summaries)
}

func (f *Fetcher) recent(ctx context.Context) ([]store.DailySummary, error) {
	if f.store == nil {
		return nil, fmt.Errorf("%w: no store configured", ErrStoreUnavailable)
	}
	today := f.now().In(f.location)
	from := today.AddDate(0, 0, -lookbackDays)
	summaries, err := f.store.ListDailySummaries(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return summaries, nil
}

// FormatSummaries renders summaries as "date: content" blocks under a header.
// An empty list renders as "".
func FormatSummaries(summaries []store.DailySummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		content := strings.TrimSpace(summary.Content)
		if content == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s: %s", summary.Date.Format(time.DateOnly), content))
	}
	if len(blocks) == 0 {
		return ""
	}
	return summaryHeader + "\n\n" + strings.Join(blocks, "\n\n")
}
