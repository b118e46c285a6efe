// Package pipeline is the HTTP client for the external policy pipeline
// service, which owns text extraction, semantic indexing, and answer
// generation. Every method is plain request/response; optional hardening is
// injected through a resilience executor.
package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	llmID      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	// LLMID is the default model selector forwarded in chat mode when the
	// caller does not pick one.
	LLMID string
	// Timeout bounds each HTTP call; zero falls back to two minutes, matching
	// the slowest pipeline runs observed upstream.
	Timeout time.Duration
	// Executor, when non-nil and not passthrough, wraps calls with retry and
	// circuit breaking.
	Executor *resilience.Executor
}

func New(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		llmID:      options.LLMID,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

// Extract forwards a file to POST /upload and returns the extracted text.
func (c *Client) Extract(ctx context.Context, filename string, file io.Reader) (domain.UploadResult, error) {
	var result domain.UploadResult
	err := c.run(ctx, "extract", func(callCtx context.Context) error {
		return c.postMultipart(callCtx, "/upload", "file", filename, file, &result, "extract")
	})
	if err != nil {
		return domain.UploadResult{}, wrapTransport("extract", err)
	}
	return result, nil
}

// Index upserts items via POST /index. An absent upserted count in the
// response is reported as such rather than zeroed.
func (c *Client) Index(ctx context.Context, items []domain.IndexItem) (domain.IndexReceipt, error) {
	request := struct {
		Items []domain.IndexItem `json:"items"`
	}{Items: items}

	var response struct {
		Upserted *int `json:"upserted"`
	}
	err := c.run(ctx, "index", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/index", request, &response, "index")
	})
	if err != nil {
		return domain.IndexReceipt{}, wrapTransport("index", err)
	}
	if response.Upserted == nil {
		return domain.IndexReceipt{}, nil
	}
	return domain.IndexReceipt{Upserted: *response.Upserted, Reported: true}, nil
}

// SubmitQuestion routes the question to POST /ask (pipeline mode) or
// POST /chat (chat mode) and returns the response body verbatim.
func (c *Client) SubmitQuestion(ctx context.Context, question domain.Question) (json.RawMessage, error) {
	var path, operation string
	var payload any

	switch question.Mode {
	case domain.ModeChat:
		path, operation = "/chat", "chat"
		llmID := question.LLMID
		if llmID == "" {
			llmID = c.llmID
		}
		payload = struct {
			Message string `json:"message"`
			LLMID   string `json:"llm_id,omitempty"`
		}{Message: question.Text, LLMID: llmID}
	default:
		path, operation = "/ask", "ask"
		extra := question.ExtraInputs
		if extra == nil {
			extra = map[string]any{}
		}
		payload = struct {
			Question    string         `json:"question"`
			ExtraInputs map[string]any `json:"extra_inputs"`
		}{Question: question.Text, ExtraInputs: extra}
	}

	var raw json.RawMessage
	err := c.run(ctx, operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, &raw, operation)
	})
	if err != nil {
		return nil, wrapTransport(operation, err)
	}
	return raw, nil
}

// SearchIndex queries the external index via POST /search.
func (c *Client) SearchIndex(ctx context.Context, query string, topK int) (json.RawMessage, error) {
	request := struct {
		Q    string `json:"q"`
		TopK int    `json:"top_k"`
	}{Q: query, TopK: topK}

	var raw json.RawMessage
	err := c.run(ctx, "search", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/search", request, &raw, "search")
	})
	if err != nil {
		return nil, wrapTransport("search", err)
	}
	return raw, nil
}

func (c *Client) run(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Do(ctx, "pipeline."+operation, classifyPipelineError, call)
}
