package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

func TestExtractSendsMultipartFile(t *testing.T) {
	var capturedField, capturedFilename, capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile() error = %v", err)
		}
		defer file.Close()
		raw, _ := io.ReadAll(file)
		capturedField = "file"
		capturedFilename = header.Filename
		capturedBody = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "extracted", "filename": header.Filename})
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	result, err := client.Extract(context.Background(), "policy.pdf", bytes.NewBufferString("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Text != "extracted" || result.Filename != "policy.pdf" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if capturedField != "file" || capturedFilename != "policy.pdf" || capturedBody != "%PDF-1.4" {
		t.Fatalf("unexpected upload: field=%s filename=%s body=%q", capturedField, capturedFilename, capturedBody)
	}
}

func TestIndexRequestShapeAndReceipt(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"upserted": 1})
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	items := []domain.IndexItem{{
		ID:   "doc-report-v1",
		Text: "hello",
		Meta: map[string]string{"filename": "Report v1.pdf"},
	}}
	receipt, err := client.Index(context.Background(), items)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if !receipt.Reported || receipt.Upserted != 1 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	sent, ok := captured["items"].([]any)
	if !ok || len(sent) != 1 {
		t.Fatalf("expected items array, got %+v", captured)
	}
	first := sent[0].(map[string]any)
	if first["id"] != "doc-report-v1" || first["text"] != "hello" {
		t.Fatalf("unexpected item: %+v", first)
	}
}

func TestIndexAbsentUpsertedNotReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	receipt, err := client.Index(context.Background(), []domain.IndexItem{{ID: "a", Text: "t"}})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if receipt.Reported {
		t.Fatalf("expected unreported receipt, got %+v", receipt)
	}
}

func TestSubmitQuestionRoutesByMode(t *testing.T) {
	var askBody, chatBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ask":
			_ = json.NewDecoder(r.Body).Decode(&askBody)
			_, _ = w.Write([]byte(`{"answer":"from pipeline"}`))
		case "/chat":
			_ = json.NewDecoder(r.Body).Decode(&chatBody)
			_, _ = w.Write([]byte(`{"output":"from chat"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, Options{LLMID: "default-llm"})

	raw, err := client.SubmitQuestion(context.Background(), domain.Question{Text: "q1", Mode: domain.ModePipeline})
	if err != nil {
		t.Fatalf("SubmitQuestion(pipeline) error = %v", err)
	}
	if !strings.Contains(string(raw), "from pipeline") {
		t.Fatalf("unexpected pipeline body: %s", raw)
	}
	if askBody["question"] != "q1" {
		t.Fatalf("unexpected ask payload: %+v", askBody)
	}
	if _, ok := askBody["extra_inputs"].(map[string]any); !ok {
		t.Fatalf("expected extra_inputs object, got %+v", askBody)
	}

	raw, err = client.SubmitQuestion(context.Background(), domain.Question{Text: "q2", Mode: domain.ModeChat})
	if err != nil {
		t.Fatalf("SubmitQuestion(chat) error = %v", err)
	}
	if !strings.Contains(string(raw), "from chat") {
		t.Fatalf("unexpected chat body: %s", raw)
	}
	if chatBody["message"] != "q2" || chatBody["llm_id"] != "default-llm" {
		t.Fatalf("unexpected chat payload: %+v", chatBody)
	}
}

func TestSubmitQuestionExplicitLLMOverridesDefault(t *testing.T) {
	var chatBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&chatBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{LLMID: "default-llm"})
	q := domain.Question{Text: "q", Mode: domain.ModeChat, LLMID: "special"}
	if _, err := client.SubmitQuestion(context.Background(), q); err != nil {
		t.Fatalf("SubmitQuestion() error = %v", err)
	}
	if chatBody["llm_id"] != "special" {
		t.Fatalf("expected llm override, got %+v", chatBody)
	}
}

func TestNonSuccessStatusBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"pipeline exploded"}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	_, err := client.SubmitQuestion(context.Background(), domain.Question{Text: "q"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline exploded") {
		t.Fatalf("expected response body as detail, got %v", err)
	}

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status error 502, got %v", err)
	}
}

func TestClientErrorStatusSameTransportKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("bad question"))
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	_, err := client.SubmitQuestion(context.Background(), domain.Question{Text: "q"})
	// 4xx and 5xx degrade identically at this layer.
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport kind for 4xx, got %v", err)
	}
}

func TestUnreachableEndpointBecomesTransportError(t *testing.T) {
	client := New("http://127.0.0.1:1", Options{})
	_, err := client.Extract(context.Background(), "a.pdf", bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport kind, got %v", err)
	}
}

func TestSearchIndexRequestShape(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	if _, err := client.SearchIndex(context.Background(), "clause", 7); err != nil {
		t.Fatalf("SearchIndex() error = %v", err)
	}
	if captured["q"] != "clause" || captured["top_k"] != float64(7) {
		t.Fatalf("unexpected payload: %+v", captured)
	}
}
