package normalize

import (
	"fmt"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

// SearchHits normalizes the raw body of an index search into a stable result
// list. Accepted shapes: a bare JSON array of hits, or an object carrying the
// array under "results", "hits" or "data".
func SearchHits(v any) *domain.SearchResult {
	list, _ := v.([]any)
	if list == nil {
		if m, ok := v.(map[string]any); ok {
			for _, field := range []string{"results", "hits", "data"} {
				if inner, ok := m[field].([]any); ok {
					list = inner
					break
				}
			}
		}
	}

	out := &domain.SearchResult{Results: make([]domain.SearchHit, 0, len(list))}
	for _, entry := range list {
		out.Results = append(out.Results, Hit(entry))
	}
	out.Count = len(out.Results)
	return out
}

// Hit maps one loosely-shaped search hit to {id, score, text, attributes}.
// Text falls back through value|text|output and finally a string rendering of
// the whole entry; attributes through attributes|meta|metadata.
func Hit(v any) domain.SearchHit {
	if s, ok := v.(string); ok {
		return domain.SearchHit{Text: s}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return domain.SearchHit{Text: coerce(v)}
	}

	hit := domain.SearchHit{
		ID:   firstString(m, "id"),
		Text: firstString(m, "value", "text", "output"),
	}
	if hit.Text == "" {
		hit.Text = coerce(m)
	}
	if score, ok := m["score"].(float64); ok {
		hit.Score = score
	}
	for _, field := range []string{"attributes", "meta", "metadata"} {
		attrs, ok := m[field].(map[string]any)
		if !ok || len(attrs) == 0 {
			continue
		}
		hit.Attributes = make(map[string]string, len(attrs))
		for key, value := range attrs {
			if s, ok := value.(string); ok {
				hit.Attributes[key] = s
			} else {
				hit.Attributes[key] = fmt.Sprintf("%v", value)
			}
		}
		break
	}
	return hit
}
