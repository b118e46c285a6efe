package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/core/ports"
)

// WarnPrefix marks error text surfaced through the normal display fields, the
// same low-fidelity policy the original front end used.
const WarnPrefix = "⚠️ "

// UploadIndexUseCase sequences file upload → remote extraction → optional
// automatic indexing, recording every transition in the session snapshot.
// Remote failures are absorbed into the session (never re-thrown); only
// input validation and session-store problems surface as errors.
//
// Every transition is written through SessionStore.Update and mutates only
// the upload workflow's fields, so an ask running concurrently in the same
// session cannot be clobbered by a stale write-back (and vice versa).
type UploadIndexUseCase struct {
	gateway  ports.PipelineGateway
	sessions ports.SessionStore
	events   ports.EventPublisher
	idPrefix string
}

func NewUploadIndexUseCase(
	gateway ports.PipelineGateway,
	sessions ports.SessionStore,
	events ports.EventPublisher,
	idPrefix string,
) *UploadIndexUseCase {
	return &UploadIndexUseCase{
		gateway:  gateway,
		sessions: sessions,
		events:   events,
		idPrefix: idPrefix,
	}
}

// Upload runs the workflow and returns the session plus the number of
// documents upserted (zero unless auto-indexing completed). A nil file is a
// no-op: the session is returned unchanged, mirroring "no file selected".
func (uc *UploadIndexUseCase) Upload(
	ctx context.Context,
	sessionID, filename string,
	file io.Reader,
	autoIndex bool,
) (*domain.Session, int, error) {
	sess, err := uc.sessions.Ensure(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if file == nil {
		return sess, 0, nil
	}

	// Claim the workflow slot and clear the previous answer display in one
	// store transaction. A second upload racing for the same session loses.
	sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		if s.Upload.Phase.InFlight() {
			return domain.WrapError(domain.ErrConflict, "upload", errors.New("upload workflow already in flight"))
		}
		s.Upload = domain.UploadState{Phase: domain.PhaseUploading, Filename: filename}
		s.Ask = domain.AskState{Phase: domain.PhaseIdle}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	result, err := uc.gateway.Extract(ctx, filename, file)
	if err != nil {
		sess, err = uc.fail(ctx, sess.ID, err)
		return sess, 0, err
	}

	if !autoIndex || strings.TrimSpace(result.Text) == "" {
		sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
			s.Upload.Filename = result.Filename
			s.Upload.ExtractedText = result.Text
			s.Upload.Phase = domain.PhaseExtracted
			return nil
		})
		return sess, 0, err
	}

	sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		s.Upload.Filename = result.Filename
		s.Upload.ExtractedText = result.Text
		s.Upload.Phase = domain.PhaseIndexing
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	item := domain.IndexItem{
		ID:   DocumentID(uc.idPrefix, result.Filename),
		Text: result.Text,
		Meta: map[string]string{
			"filename": result.Filename,
			"source":   "upload",
		},
	}
	receipt, err := uc.gateway.Index(ctx, []domain.IndexItem{item})
	if err != nil {
		// Extracted text stays visible; only the error line is appended.
		sess, err = uc.fail(ctx, sess.ID, err)
		return sess, 0, err
	}
	upserted := upsertedCount(receipt, 1)

	sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		s.Upload.DocumentID = item.ID
		s.Upload.Phase = domain.PhaseIndexed
		s.IndexedTotal += upserted
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	uc.notify(ctx, domain.IndexedEvent{
		DocumentID: item.ID,
		Filename:   result.Filename,
		SessionID:  sess.ID,
		Upserted:   upserted,
		IndexedAt:  time.Now().UTC(),
	})
	return sess, upserted, nil
}

// IndexItems submits caller-provided items and updates the session counter
// with the same fallback rule as auto-indexing.
func (uc *UploadIndexUseCase) IndexItems(
	ctx context.Context,
	sessionID string,
	items []domain.IndexItem,
) (*domain.Session, int, error) {
	if len(items) == 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "index", errors.New("items must not be empty"))
	}
	for i := range items {
		if strings.TrimSpace(items[i].Text) == "" {
			return nil, 0, domain.WrapError(domain.ErrInvalidInput, "index", errors.New("item text must not be empty"))
		}
		if items[i].ID == "" {
			items[i].ID = DocumentID(uc.idPrefix, items[i].Meta["filename"])
		}
	}

	sess, err := uc.sessions.Ensure(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}

	receipt, err := uc.gateway.Index(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	upserted := upsertedCount(receipt, len(items))

	sess, err = uc.sessions.Update(ctx, sess.ID, func(s *domain.Session) error {
		s.IndexedTotal += upserted
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sess, upserted, nil
}

// upsertedCount falls back to the batch size when the server did not report
// a count.
func upsertedCount(receipt domain.IndexReceipt, batchSize int) int {
	if !receipt.Reported {
		return batchSize
	}
	return receipt.Upserted
}

func (uc *UploadIndexUseCase) fail(ctx context.Context, sessionID string, cause error) (*domain.Session, error) {
	return uc.sessions.Update(ctx, sessionID, func(s *domain.Session) error {
		s.Upload.Phase = domain.PhaseFailed
		if s.Upload.ExtractedText == "" {
			s.Upload.ExtractedText = WarnPrefix + cause.Error()
		} else {
			s.Upload.ExtractedText += "\n" + WarnPrefix + cause.Error()
		}
		return nil
	})
}

func (uc *UploadIndexUseCase) notify(ctx context.Context, event domain.IndexedEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishDocumentIndexed(ctx, event); err != nil {
		slog.Warn("indexed_event_publish_failed", "document_id", event.DocumentID, "error", err)
	}
}
