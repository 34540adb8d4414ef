package reply

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dwizi/esg-advisor/internal/format"
	"github.com/dwizi/esg-advisor/internal/knowledge"
	"github.com/dwizi/esg-advisor/internal/llm"
)

type fakeGenerator struct {
	mu     sync.Mutex
	inputs []llm.MessageInput
	reply  string
	err    error
	block  bool
	panic  bool
}

func (f *fakeGenerator) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.panic {
		panic("backend exploded")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type fakeContext struct {
	summaries string
	messages  []string
}

func (f *fakeContext) FetchRecentSummariesIfNeeded(ctx context.Context, message string) string {
	f.messages = append(f.messages, message)
	return f.summaries
}

const scopeThreeReply = "好的，針對範疇三的計算，我整理三個重點：\n" +
	"1. 先確認組織邊界與營運邊界，列出上下游所有可能的間接排放源，再依重大性篩選出需要量化的類別。\n" +
	"2. 優先蒐集供應商提供的一手活動數據，缺口再用支出法或平均排放係數補足，並記錄每項數據的來源與不確定性。\n" +
	"3. 建立計算表單與佐證文件，定期檢視係數版本與假設，方便日後內部稽核或第三方查證時快速回溯。\n" +
	"這樣有回答到你的問題嗎？"

func newTestService(t *testing.T, generator llm.Generator, fetcher ContextFetcher, cfg Config) *Service {
	t.Helper()
	tables, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(Dependencies{
		Tables:    tables,
		Generator: generator,
		Context:   fetcher,
		Source:    rand.New(rand.NewPCG(7, 11)),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg)
}

func TestProduceReplyAnswersCasualChatWithCannedGreeting(t *testing.T) {
	generator := &fakeGenerator{reply: scopeThreeReply}
	fetcher := &fakeContext{}
	service := newTestService(t, generator, fetcher, Config{})

	got := service.ProduceReply(context.Background(), "你好")
	if !slices.Contains(CannedGreetings, got) {
		t.Fatalf("expected a canned greeting verbatim, got %q", got)
	}
	if generator.calls() != 0 {
		t.Fatalf("expected no generation call, got %d", generator.calls())
	}
	if len(fetcher.messages) != 0 {
		t.Fatalf("expected no summary lookup for casual chat")
	}
}

func TestProduceReplyScopesPromptAndFormatsReply(t *testing.T) {
	generator := &fakeGenerator{reply: scopeThreeReply}
	service := newTestService(t, generator, &fakeContext{}, Config{})

	message := "請問範疇三要怎麼計算？"
	got := service.ProduceReply(context.Background(), message)

	if generator.calls() != 1 {
		t.Fatalf("expected one generation call, got %d", generator.calls())
	}
	input := generator.inputs[0]
	if input.Text != message {
		t.Fatalf("expected message passed through, got %q", input.Text)
	}
	if !strings.Contains(input.SystemPrompt, "ISO 14064-1") {
		t.Fatalf("expected ISO 14064-1 knowledge block in system prompt")
	}
	if strings.Contains(input.SystemPrompt, followupInstruction) {
		t.Fatalf("did not expect follow-up instruction for a specific question")
	}
	if input.MaxTokens != llm.DefaultMaxTokens || input.Temperature != llm.DefaultTemperature {
		t.Fatalf("expected default sampling, got %d / %v", input.MaxTokens, input.Temperature)
	}

	lines := strings.Split(got, "\n\n")
	points := 0
	for _, line := range lines {
		if format.HasMarker(line) {
			points++
		}
	}
	if points == 0 || points > format.MaxPoints {
		t.Fatalf("expected 1..%d marked points, got %d in %q", format.MaxPoints, points, got)
	}
	closing := lines[len(lines)-1]
	if !strings.HasSuffix(closing, "？") {
		t.Fatalf("expected closing question, got %q", closing)
	}
}

func TestProduceReplyAddsFollowupInstructionForVagueQuestion(t *testing.T) {
	generator := &fakeGenerator{reply: scopeThreeReply}
	service := newTestService(t, generator, &fakeContext{}, Config{})

	service.ProduceReply(context.Background(), "怎麼做？")
	if generator.calls() != 1 {
		t.Fatalf("expected one generation call, got %d", generator.calls())
	}
	prompt := generator.inputs[0].SystemPrompt
	if !strings.Contains(prompt, followupInstruction) {
		t.Fatalf("expected follow-up instruction in system prompt")
	}
	if !strings.Contains(prompt, "一般 ESG 與碳管理") {
		t.Fatalf("expected general knowledge block for unscoped question")
	}
}

func TestProduceReplyIncludesRecentSummaries(t *testing.T) {
	generator := &fakeGenerator{reply: scopeThreeReply}
	fetcher := &fakeContext{summaries: "以下是最近幾天的對話摘要：\n2026-10-14: 討論了範疇二的電力係數"}
	service := newTestService(t, generator, fetcher, Config{})

	message := "上次說的範疇二進度如何？"
	service.ProduceReply(context.Background(), message)
	if len(fetcher.messages) != 1 || fetcher.messages[0] != message {
		t.Fatalf("expected fetcher to see the message, got %v", fetcher.messages)
	}
	if !strings.Contains(generator.inputs[0].SystemPrompt, "範疇二的電力係數") {
		t.Fatalf("expected summaries in system prompt")
	}
}

func TestProduceReplyReturnsApologyOnGenerationFailure(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"error":       {err: llm.ErrGeneration},
		"unavailable": {err: llm.ErrUnavailable},
		"empty reply": {reply: "  \n "},
		"panic":       {panic: true},
	}
	for name, generator := range cases {
		t.Run(name, func(t *testing.T) {
			service := newTestService(t, generator, nil, Config{})
			if got := service.ProduceReply(context.Background(), "碳盤查要準備什麼？"); got != Apology {
				t.Fatalf("expected apology, got %q", got)
			}
		})
	}
}

func TestProduceReplyReturnsApologyWithoutGenerator(t *testing.T) {
	service := newTestService(t, nil, nil, Config{})
	if got := service.ProduceReply(context.Background(), "碳盤查要準備什麼？"); got != Apology {
		t.Fatalf("expected apology, got %q", got)
	}
}

func TestProduceReplyTimesOutSlowGeneration(t *testing.T) {
	generator := &fakeGenerator{block: true}
	service := newTestService(t, generator, nil, Config{GenerationTimeout: 20 * time.Millisecond})

	started := time.Now()
	got := service.ProduceReply(context.Background(), "碳盤查要準備什麼？")
	if got != Apology {
		t.Fatalf("expected apology after timeout, got %q", got)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("expected timeout to cut generation short, took %s", elapsed)
	}
}

func TestProduceReplyFallsBackToRawWhenUnformattable(t *testing.T) {
	raw := "你是想問組織型盤查嗎？還是產品碳足跡？"
	generator := &fakeGenerator{reply: raw}
	service := newTestService(t, generator, nil, Config{})

	if got := service.ProduceReply(context.Background(), "碳相關的問題"); got != raw {
		t.Fatalf("expected raw reply, got %q", got)
	}
}

func TestProduceReplyPassesConfiguredSampling(t *testing.T) {
	generator := &fakeGenerator{reply: scopeThreeReply}
	service := newTestService(t, generator, nil, Config{MaxTokens: 120, Temperature: 0.2})

	service.ProduceReply(context.Background(), "SBTi 要怎麼申請？")
	input := generator.inputs[0]
	if input.MaxTokens != 120 || input.Temperature != 0.2 {
		t.Fatalf("expected configured sampling, got %d / %v", input.MaxTokens, input.Temperature)
	}
	if !strings.Contains(input.SystemPrompt, "Science Based Targets initiative") {
		t.Fatalf("expected SBTi knowledge block")
	}
}

func TestClassifyRoute(t *testing.T) {
	service := newTestService(t, &fakeGenerator{}, nil, Config{})

	route := service.Classify("你好")
	if route.Intent != "chat" || route.Domain != "" {
		t.Fatalf("unexpected chat route: %+v", route)
	}
	route = service.Classify("碳費要怎麼辦？")
	if route.Domain != knowledge.TagTaiwanReg || !route.NeedsFollowup {
		t.Fatalf("unexpected professional route: %+v", route)
	}
}

func TestComposeSystemPromptOrdersSections(t *testing.T) {
	prompt := ComposeSystemPrompt(PromptParts{
		Knowledge:     "KNOWLEDGE",
		Summaries:     "SUMMARIES",
		NeedsFollowup: true,
	})
	knowledgeAt := strings.Index(prompt, "KNOWLEDGE")
	rulesAt := strings.Index(prompt, "200～220")
	summariesAt := strings.Index(prompt, "SUMMARIES")
	followupAt := strings.Index(prompt, followupInstruction)
	if !(knowledgeAt == 0 && knowledgeAt < rulesAt && rulesAt < summariesAt && summariesAt < followupAt) {
		t.Fatalf("unexpected section order: %d %d %d %d", knowledgeAt, rulesAt, summariesAt, followupAt)
	}
	for _, marker := range format.Markers {
		if !strings.Contains(prompt, marker) {
			t.Fatalf("expected marker %s in formatting rules", marker)
		}
	}

	bare := ComposeSystemPrompt(PromptParts{Knowledge: "KNOWLEDGE"})
	if strings.Contains(bare, followupInstruction) || strings.Contains(bare, "\n\n\n") {
		t.Fatalf("unexpected content in bare prompt: %q", bare)
	}
}

func TestGenerateWrapsTimeout(t *testing.T) {
	service := newTestService(t, &fakeGenerator{block: true}, nil, Config{GenerationTimeout: time.Millisecond})
	_, err := service.generate(context.Background(), "system", "碳")
	if !errors.Is(err, llm.ErrGeneration) {
		t.Fatalf("expected ErrGeneration on timeout, got %v", err)
	}
}
