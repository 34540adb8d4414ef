package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dwizi/esg-advisor/internal/config"
	"github.com/dwizi/esg-advisor/internal/store"
)

// maxMessageRunes bounds a single chat message accepted over HTTP.
const maxMessageRunes = 2000

type Replier interface {
	ProduceReply(ctx context.Context, message string) string
}

type Dependencies struct {
	Config  config.Config
	Store   *store.Store
	Replier Replier
	Version string
	Logger  *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/reply", rt.handleReply)
	mux.HandleFunc("/api/v1/summaries", rt.handleSummaries)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": "summary store not configured"})
		return
	}
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "esg-advisor",
		"version":      r.deps.Version,
		"environment":  r.deps.Config.Environment,
		"llm_provider": r.deps.Config.LLMProvider,
		"timezone":     r.deps.Config.Timezone,
	})
}

type replyRequest struct {
	Text string `json:"text"`
}

func (r *router) handleReply(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload replyRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	if utf8.RuneCountInString(payload.Text) > maxMessageRunes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "text is too long"})
		return
	}

	requestID := uuid.NewString()
	started := time.Now()
	reply := r.deps.Replier.ProduceReply(req.Context(), payload.Text)
	r.deps.Logger.Info("reply served", "request_id", requestID, "duration_ms", time.Since(started).Milliseconds())

	writeJSON(w, http.StatusOK, map[string]string{
		"request_id": requestID,
		"reply":      reply,
	})
}

type summaryRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// handleSummaries accepts daily digests produced outside this service.
func (r *router) handleSummaries(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "summary store not configured"})
		return
	}

	var payload summaryRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(payload.Date))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	storeCtx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()
	summary, err := r.deps.Store.UpsertDailySummary(storeCtx, date, payload.Content)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrEmptySummary) {
			status = http.StatusBadRequest
		} else {
			r.deps.Logger.Error("failed to store daily summary", "error", err, "date", payload.Date)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      summary.ID,
		"date":    summary.Date.Format(time.DateOnly),
		"content": summary.Content,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
