package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

// PipelineGateway is the typed client surface of the external pipeline
// service. All calls are plain request/response; reliability policy lives with
// the implementation, not with callers.
type PipelineGateway interface {
	// Extract forwards a file to the extraction endpoint.
	Extract(ctx context.Context, filename string, file io.Reader) (domain.UploadResult, error)
	// Index upserts items into the external index.
	Index(ctx context.Context, items []domain.IndexItem) (domain.IndexReceipt, error)
	// SubmitQuestion routes to the pipeline or chat endpoint based on the
	// question's mode and returns the response body verbatim.
	SubmitQuestion(ctx context.Context, question domain.Question) (json.RawMessage, error)
	// SearchIndex queries the external index directly.
	SearchIndex(ctx context.Context, query string, topK int) (json.RawMessage, error)
}

// SessionStore holds transient per-session workflow state.
type SessionStore interface {
	// Ensure returns the session for id, creating one (minting an id when
	// id is empty) if none exists.
	Ensure(ctx context.Context, id string) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Update applies apply to the stored session under the store's lock and
	// returns the resulting snapshot. Nothing is written when apply errors.
	// Callers mutate only their own workflow's fields inside apply so the two
	// workflows can interleave without losing each other's writes.
	Update(ctx context.Context, id string, apply func(*domain.Session) error) (*domain.Session, error)
}

// EventPublisher emits workflow notifications for downstream consumers.
// Implementations must be safe to skip: publish failures never fail a workflow.
type EventPublisher interface {
	PublishDocumentIndexed(ctx context.Context, event domain.IndexedEvent) error
}
