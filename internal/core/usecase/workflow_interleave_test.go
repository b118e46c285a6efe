package usecase

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/core/normalize"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/session/memory"
)

// parkedAnswerGateway blocks SubmitQuestion until released so the other
// workflow can run to completion in between.
type parkedAnswerGateway struct {
	started chan struct{}
	release chan struct{}
}

func (g *parkedAnswerGateway) Extract(_ context.Context, filename string, file io.Reader) (domain.UploadResult, error) {
	if file != nil {
		_, _ = io.Copy(io.Discard, file)
	}
	return domain.UploadResult{Text: "hello policy", Filename: filename}, nil
}

func (g *parkedAnswerGateway) Index(_ context.Context, items []domain.IndexItem) (domain.IndexReceipt, error) {
	return domain.IndexReceipt{Upserted: len(items), Reported: true}, nil
}

func (g *parkedAnswerGateway) SubmitQuestion(context.Context, domain.Question) (json.RawMessage, error) {
	close(g.started)
	<-g.release
	return json.RawMessage(`{"answer":"42"}`), nil
}

func (g *parkedAnswerGateway) SearchIndex(context.Context, string, int) (json.RawMessage, error) {
	return nil, nil
}

// A full upload completes while an ask for the same session is waiting on
// the remote answer. The ask's final write must not roll the upload state
// back to what it was when the ask started.
func TestUploadSurvivesConcurrentAsk(t *testing.T) {
	store := memory.New(time.Minute)
	gw := &parkedAnswerGateway{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	uploadUC := NewUploadIndexUseCase(gw, store, nil, "doc")
	askUC := NewAskUseCase(gw, store, normalize.New())

	if _, err := store.Ensure(context.Background(), "s1"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	askDone := make(chan error, 1)
	go func() {
		_, err := askUC.Ask(context.Background(), "s1", domain.Question{Text: "what?"})
		askDone <- err
	}()
	<-gw.started

	if _, _, err := uploadUC.Upload(context.Background(), "s1", "report.txt", strings.NewReader("x"), true); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	close(gw.release)
	if err := <-askDone; err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	final, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if final.Upload.Phase != domain.PhaseIndexed {
		t.Fatalf("upload state lost: phase %s", final.Upload.Phase)
	}
	if final.Upload.ExtractedText != "hello policy" {
		t.Fatalf("extracted text lost: %q", final.Upload.ExtractedText)
	}
	if final.IndexedTotal != 1 {
		t.Fatalf("indexed counter lost: %d", final.IndexedTotal)
	}
	if final.Ask.Phase != domain.PhaseAnswered || final.Ask.Answer != "42" {
		t.Fatalf("unexpected ask state: %+v", final.Ask)
	}
}
