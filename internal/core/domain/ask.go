package domain

import "strings"

// AskMode selects which remote endpoint answers a question.
type AskMode string

const (
	// ModePipeline routes through the retrieval-augmented pipeline (/ask).
	ModePipeline AskMode = "pipeline"
	// ModeChat routes straight to the underlying LLM (/chat).
	ModeChat AskMode = "chat"
)

// ParseAskMode maps free-form input to a mode, defaulting to pipeline.
func ParseAskMode(raw string) AskMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeChat)) {
		return ModeChat
	}
	return ModePipeline
}

// Question is a single question submission. ExtraInputs is forwarded only in
// pipeline mode, LLMID only in chat mode.
type Question struct {
	Text        string
	Mode        AskMode
	LLMID       string
	ExtraInputs map[string]any
}

// Citation is display-only provenance pulled out of a loosely-typed answer.
// Nothing here is validated.
type Citation struct {
	Source  string `json:"source,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchHit is a normalized hit from the external index search.
type SearchHit struct {
	ID         string            `json:"id,omitempty"`
	Score      float64           `json:"score,omitempty"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SearchResult is the normalized shape of the /search passthrough.
type SearchResult struct {
	Count   int         `json:"count"`
	Results []SearchHit `json:"results"`
}
