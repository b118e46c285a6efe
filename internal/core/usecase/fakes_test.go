package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

var errNotFound = errors.New("not found")

type gatewayFake struct {
	extractResult domain.UploadResult
	extractErr    error
	extractCalls  int

	indexReceipt domain.IndexReceipt
	indexErr     error
	indexCalls   int
	indexedItems []domain.IndexItem

	askResponse json.RawMessage
	askErr      error
	askCalls    int
	lastMode    domain.AskMode
	lastLLMID   string

	searchResponse json.RawMessage
	searchErr      error
	lastQuery      string
	lastTopK       int
}

func (f *gatewayFake) Extract(_ context.Context, _ string, file io.Reader) (domain.UploadResult, error) {
	f.extractCalls++
	if file != nil {
		_, _ = io.Copy(io.Discard, file)
	}
	if f.extractErr != nil {
		return domain.UploadResult{}, f.extractErr
	}
	return f.extractResult, nil
}

func (f *gatewayFake) Index(_ context.Context, items []domain.IndexItem) (domain.IndexReceipt, error) {
	f.indexCalls++
	f.indexedItems = items
	if f.indexErr != nil {
		return domain.IndexReceipt{}, f.indexErr
	}
	return f.indexReceipt, nil
}

func (f *gatewayFake) SubmitQuestion(_ context.Context, q domain.Question) (json.RawMessage, error) {
	f.askCalls++
	f.lastMode = q.Mode
	f.lastLLMID = q.LLMID
	if f.askErr != nil {
		return nil, f.askErr
	}
	return f.askResponse, nil
}

func (f *gatewayFake) SearchIndex(_ context.Context, query string, topK int) (json.RawMessage, error) {
	f.lastQuery = query
	f.lastTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResponse, nil
}

type sessionStoreFake struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	updateErr error
}

func newSessionStoreFake() *sessionStoreFake {
	return &sessionStoreFake{sessions: map[string]*domain.Session{}}
}

func (f *sessionStoreFake) Ensure(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if sess, ok := f.sessions[id]; ok {
		return sess.Clone(), nil
	}
	sess := domain.NewSession(id)
	f.sessions[id] = sess.Clone()
	return sess, nil
}

func (f *sessionStoreFake) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get session", errNotFound)
	}
	return sess.Clone(), nil
}

func (f *sessionStoreFake) Update(_ context.Context, id string, apply func(*domain.Session) error) (*domain.Session, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var sess *domain.Session
	if existing, ok := f.sessions[id]; ok {
		sess = existing.Clone()
	} else {
		sess = domain.NewSession(id)
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	f.sessions[id] = sess.Clone()
	return sess, nil
}

// seed plants session state directly, bypassing the workflows.
func (f *sessionStoreFake) seed(sess *domain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.ID] = sess.Clone()
}

type eventsFake struct {
	events []domain.IndexedEvent
	err    error
}

func (f *eventsFake) PublishDocumentIndexed(_ context.Context, event domain.IndexedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
