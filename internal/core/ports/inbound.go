package ports

import (
	"context"
	"io"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

// DocumentWorkflow is the inbound contract for the upload-index workflow.
// The int result is the number of documents upserted by the call (zero when
// nothing was indexed).
type DocumentWorkflow interface {
	Upload(ctx context.Context, sessionID, filename string, file io.Reader, autoIndex bool) (*domain.Session, int, error)
	IndexItems(ctx context.Context, sessionID string, items []domain.IndexItem) (*domain.Session, int, error)
}

// AskWorkflow is the inbound contract for question answering.
type AskWorkflow interface {
	Ask(ctx context.Context, sessionID string, question domain.Question) (*domain.Session, error)
}

// IndexSearcher is the inbound contract for the search passthrough.
type IndexSearcher interface {
	Search(ctx context.Context, query string, topK int) (*domain.SearchResult, error)
}

// SessionReader exposes session snapshots for display.
type SessionReader interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.Session, error)
}
