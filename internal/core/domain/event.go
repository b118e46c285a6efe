package domain

import "time"

// IndexedEvent announces a successful index upsert to interested consumers.
type IndexedEvent struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename,omitempty"`
	SessionID  string    `json:"session_id"`
	Upserted   int       `json:"upserted"`
	IndexedAt  time.Time `json:"indexed_at"`
}
