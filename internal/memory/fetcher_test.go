package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dwizi/esg-advisor/internal/store"
)

type fakeSummaryStore struct {
	calls     int
	from, to  time.Time
	summaries []store.DailySummary
	err       error
}

func (f *fakeSummaryStore) ListDailySummaries(ctx context.Context, from, to time.Time) ([]store.DailySummary, error) {
	f.calls++
	f.from = from
	f.to = to
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

var testTriggers = []string{"進度", "上次", "昨天", "progress"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
}

func day(value string) time.Time {
	parsed, _ := time.Parse(time.DateOnly, value)
	return parsed
}

func TestFetchWithoutTriggerSkipsStore(t *testing.T) {
	fake := &fakeSummaryStore{summaries: []store.DailySummary{{Date: day("2026-10-15"), Content: "x"}}}
	fetcher := New(fake, Config{Triggers: testTriggers, Now: fixedNow}, discardLogger())

	if got := fetcher.FetchRecentSummariesIfNeeded(context.Background(), "範疇三怎麼算"); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
	if fake.calls != 0 {
		t.Fatalf("expected store to be untouched, got %d calls", fake.calls)
	}
}

func TestFetchWithTriggerFormatsNewestFirst(t *testing.T) {
	fake := &fakeSummaryStore{summaries: []store.DailySummary{
		{Date: day("2026-10-15"), Content: "討論供應商數據蒐集"},
		{Date: day("2026-10-13"), Content: "確認組織邊界"},
	}}
	fetcher := New(fake, Config{Triggers: testTriggers, Now: fixedNow}, discardLogger())

	got := fetcher.FetchRecentSummariesIfNeeded(context.Background(), "我們上次聊到哪裡？")
	want := summaryHeader + "\n\n2026-10-15: 討論供應商數據蒐集\n\n2026-10-13: 確認組織邊界"
	if got != want {
		t.Fatalf("unexpected context:\n%s\nwant:\n%s", got, want)
	}
	if fake.from.Format(time.DateOnly) != "2026-10-12" || fake.to.Format(time.DateOnly) != "2026-10-15" {
		t.Fatalf("unexpected window %s..%s", fake.from.Format(time.DateOnly), fake.to.Format(time.DateOnly))
	}
}

func TestFetchUsesConfiguredTimezoneForToday(t *testing.T) {
	fake := &fakeSummaryStore{}
	taipei := time.FixedZone("CST", 8*60*60)
	lateUTC := func() time.Time { return time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC) }
	fetcher := New(fake, Config{Triggers: testTriggers, Location: taipei, Now: lateUTC}, discardLogger())

	fetcher.FetchRecentSummariesIfNeeded(context.Background(), "昨天的進度")
	if fake.to.Format(time.DateOnly) != "2026-10-16" {
		t.Fatalf("expected Taipei calendar day, got %s", fake.to.Format(time.DateOnly))
	}
}

func TestFetchWithTriggerAndEmptyStoreReturnsEmpty(t *testing.T) {
	fake := &fakeSummaryStore{}
	fetcher := New(fake, Config{Triggers: testTriggers, Now: fixedNow}, discardLogger())

	if got := fetcher.FetchRecentSummariesIfNeeded(context.Background(), "progress update?"); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
	if fake.calls != 1 {
		t.Fatalf("expected one store call, got %d", fake.calls)
	}
}

func TestFetchAbsorbsStoreFailure(t *testing.T) {
	fake := &fakeSummaryStore{err: errors.New("database is locked")}
	fetcher := New(fake, Config{Triggers: testTriggers, Now: fixedNow}, discardLogger())

	if got := fetcher.FetchRecentSummariesIfNeeded(context.Background(), "昨天說的"); got != "" {
		t.Fatalf("expected empty context on store failure, got %q", got)
	}

	_, err := fetcher.recent(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestFetchWithoutStore(t *testing.T) {
	fetcher := New(nil, Config{Triggers: testTriggers}, discardLogger())
	if got := fetcher.FetchRecentSummariesIfNeeded(context.Background(), "上次的進度"); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestFetchAgainstSQLiteStore(t *testing.T) {
	sqlStore, err := store.New(filepath.Join(t.TempDir(), "memory.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	ctx := context.Background()
	if err := sqlStore.AutoMigrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, seed := range []struct{ date, content string }{
		{"2026-10-11", "四天前的摘要"},
		{"2026-10-12", "三天前的摘要"},
		{"2026-10-15", "今天的摘要"},
	} {
		if _, err := sqlStore.UpsertDailySummary(ctx, day(seed.date), seed.content); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	fetcher := New(sqlStore, Config{Triggers: testTriggers, Now: fixedNow}, discardLogger())
	got := fetcher.FetchRecentSummariesIfNeeded(ctx, "昨天的進度如何")
	if !strings.HasPrefix(got, summaryHeader) {
		t.Fatalf("expected header, got %q", got)
	}
	if strings.Contains(got, "四天前") {
		t.Fatalf("expected summaries older than the window to be excluded: %q", got)
	}
	if strings.Index(got, "今天的摘要") > strings.Index(got, "三天前的摘要") {
		t.Fatalf("expected newest first: %q", got)
	}
}
