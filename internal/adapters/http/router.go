package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/core/ports"
	"github.com/kirillkom/policy-navigator/internal/observability/metrics"
)

const sessionIDHeader = "X-Session-Id"

type Router struct {
	service   string
	documents ports.DocumentWorkflow
	ask       ports.AskWorkflow
	search    ports.IndexSearcher
	sessions  ports.SessionReader
	metrics   *metrics.ServerMetrics

	maxUploadBytes   int64
	autoIndexDefault bool
}

type RouterOptions struct {
	Service          string
	MaxUploadBytes   int64
	AutoIndexDefault bool
}

func NewRouter(
	documents ports.DocumentWorkflow,
	ask ports.AskWorkflow,
	search ports.IndexSearcher,
	sessions ports.SessionReader,
	serverMetrics *metrics.ServerMetrics,
	options RouterOptions,
) *Router {
	service := options.Service
	if service == "" {
		service = "api"
	}
	maxUploadBytes := options.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &Router{
		service:          service,
		documents:        documents,
		ask:              ask,
		search:           search,
		sessions:         sessions,
		metrics:          serverMetrics,
		maxUploadBytes:   maxUploadBytes,
		autoIndexDefault: options.AutoIndexDefault,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/upload", rt.upload)
	mux.HandleFunc("/v1/index", rt.indexItems)
	mux.HandleFunc("/v1/ask", rt.askQuestion)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/search", rt.searchIndex)
	mux.HandleFunc("/v1/session", rt.session)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(rt.service, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	autoIndex := rt.autoIndexDefault
	if raw := strings.TrimSpace(r.FormValue("auto_index")); raw != "" {
		autoIndex = strings.EqualFold(raw, "true")
	}

	session, upserted, err := rt.documents.Upload(r.Context(), sessionIDFrom(r), fileHeader.Filename, file, autoIndex)
	if err != nil {
		writeError(w, "upload", err)
		return
	}

	rt.metrics.RecordUpload(rt.service, string(session.Upload.Phase))
	rt.metrics.RecordIndexed(upserted)
	writeSession(w, http.StatusOK, session)
}

func (rt *Router) indexItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Items []domain.IndexItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	session, upserted, err := rt.documents.IndexItems(r.Context(), sessionIDFrom(r), req.Items)
	if err != nil {
		writeError(w, "index", err)
		return
	}

	rt.metrics.RecordIndexed(upserted)
	writeSession(w, http.StatusOK, session)
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question    string         `json:"question"`
		Mode        string         `json:"mode"`
		LLMID       string         `json:"llm_id"`
		ExtraInputs map[string]any `json:"extra_inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rt.runQuestion(w, r, domain.Question{
		Text:        req.Question,
		Mode:        domain.ParseAskMode(req.Mode),
		LLMID:       req.LLMID,
		ExtraInputs: req.ExtraInputs,
	})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message string `json:"message"`
		LLMID   string `json:"llm_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rt.runQuestion(w, r, domain.Question{
		Text:  req.Message,
		Mode:  domain.ModeChat,
		LLMID: req.LLMID,
	})
}

func (rt *Router) runQuestion(w http.ResponseWriter, r *http.Request, question domain.Question) {
	start := time.Now()
	session, err := rt.ask.Ask(r.Context(), sessionIDFrom(r), question)
	if err != nil {
		writeError(w, "ask", err)
		return
	}

	rt.metrics.RecordQuestion(rt.service, string(question.Mode), string(session.Ask.Phase), time.Since(start))
	writeSession(w, http.StatusOK, session)
}

func (rt *Router) searchIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"q"`
		TopK  int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.search.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		rt.metrics.RecordSearch(rt.service, "error")
		writeError(w, "search", err)
		return
	}

	rt.metrics.RecordSearch(rt.service, "ok")
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	session, err := rt.sessions.Snapshot(r.Context(), sessionIDFrom(r))
	if err != nil {
		writeError(w, "session", err)
		return
	}
	writeSession(w, http.StatusOK, session)
}

func sessionIDFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(sessionIDHeader))
}

func writeSession(w http.ResponseWriter, status int, session *domain.Session) {
	w.Header().Set(sessionIDHeader, session.ID)
	writeJSON(w, status, session)
}

func writeError(w http.ResponseWriter, operation string, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
		return
	}
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
		"operation": operation,
		"error":     err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
