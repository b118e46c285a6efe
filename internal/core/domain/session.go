package domain

import (
	"encoding/json"
	"time"
)

// Phase is the observable state of one workflow inside a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseExtracted Phase = "extracted"
	PhaseIndexing  Phase = "indexing"
	PhaseIndexed   Phase = "indexed"
	PhaseAsking    Phase = "asking"
	PhaseAnswered  Phase = "answered"
	PhaseFailed    Phase = "failed"
)

// InFlight reports whether a workflow in this phase has a remote call pending.
func (p Phase) InFlight() bool {
	return p == PhaseUploading || p == PhaseIndexing || p == PhaseAsking
}

// UploadState is the upload-index workflow's slice of a session.
// ExtractedText doubles as the error surface on failure, mirroring the
// low-fidelity display policy of the original front end.
type UploadState struct {
	Phase         Phase  `json:"phase"`
	Filename      string `json:"filename,omitempty"`
	ExtractedText string `json:"extracted_text,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
}

// AskState is the ask workflow's slice of a session. Raw holds the remote
// response verbatim for diagnostic display; Answer holds BestText output, or
// the failure message on error.
type AskState struct {
	Phase     Phase           `json:"phase"`
	Question  string          `json:"question,omitempty"`
	Mode      AskMode         `json:"mode,omitempty"`
	Answer    string          `json:"answer,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Citations []Citation      `json:"citations,omitempty"`
}

// Session is the transient per-user state for one browsing session. It is
// never persisted; the external index owns all durable state.
type Session struct {
	ID           string      `json:"id"`
	Upload       UploadState `json:"upload"`
	Ask          AskState    `json:"ask"`
	IndexedTotal int         `json:"indexed_total"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewSession returns an idle session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Upload:    UploadState{Phase: PhaseIdle},
		Ask:       AskState{Phase: PhaseIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so store readers never alias workflow state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Ask.Raw != nil {
		out.Ask.Raw = append(json.RawMessage(nil), s.Ask.Raw...)
	}
	if s.Ask.Citations != nil {
		out.Ask.Citations = append([]Citation(nil), s.Ask.Citations...)
	}
	return &out
}
