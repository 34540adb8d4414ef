package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptySummary = errors.New("summary content is empty")

// DailySummary is one day's digest of conversations. Date carries the calendar day only.
type DailySummary struct {
	ID      string
	Date    time.Time
	Content string
}

// UpsertDailySummary stores the digest for date's calendar day, replacing any existing one.
func (s *Store) UpsertDailySummary(ctx context.Context, date time.Time, content string) (DailySummary, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return DailySummary{}, ErrEmptySummary
	}
	day := date.Format(time.DateOnly)
	nowUnix := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO daily_summary (id, summary_date, summary_content, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(summary_date) DO UPDATE SET
			summary_content = excluded.summary_content,
			updated_at_unix = excluded.updated_at_unix`,
		uuid.NewString(),
		day,
		content,
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return DailySummary{}, fmt.Errorf("upsert daily summary: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, summary_date, summary_content FROM daily_summary WHERE summary_date = ?`, day)
	summary, err := scanDailySummary(row)
	if err != nil {
		return DailySummary{}, fmt.Errorf("load daily summary: %w", err)
	}
	return summary, nil
}

// ListDailySummaries returns summaries whose day falls in [from, to], newest first.
// Both bounds are compared by calendar day as given; callers pick the timezone.
func (s *Store) ListDailySummaries(ctx context.Context, from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, summary_date, summary_content
		 FROM daily_summary
		 WHERE summary_date >= ? AND summary_date <= ?
		 ORDER BY summary_date DESC`,
		from.Format(time.DateOnly),
		to.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries: %w", err)
	}
	defer rows.Close()

	summaries := []DailySummary{}
	for rows.Next() {
		summary, err := scanDailySummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily summaries: %w", err)
	}
	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDailySummary(row rowScanner) (DailySummary, error) {
	var (
		summary DailySummary
		day     string
	)
	if err := row.Scan(&summary.ID, &day, &summary.Content); err != nil {
		return DailySummary{}, err
	}
	parsed, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return DailySummary{}, fmt.Errorf("parse summary date %q: %w", day, err)
	}
	summary.Date = parsed
	return summary, nil
}
