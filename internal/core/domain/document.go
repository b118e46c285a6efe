package domain

// UploadResult is what the external extraction endpoint returns for an
// uploaded file. It lives only in session state until the next upload.
type UploadResult struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// IndexItem is a single document submitted to the external index.
// ID must be unique within the index namespace; the upload workflow derives
// it deterministically from the filename so re-indexing the same document
// upserts instead of duplicating.
type IndexItem struct {
	ID   string            `json:"id"`
	Text string            `json:"text"`
	Meta map[string]string `json:"meta"`
}

// IndexReceipt reports the outcome of an index call. Reported is false when
// the server response carried no upserted count, in which case callers fall
// back to the batch size.
type IndexReceipt struct {
	Upserted int
	Reported bool
}
