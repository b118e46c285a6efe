package normalize

import (
	"github.com/kirillkom/policy-navigator/internal/core/domain"
)

// citationListFields is the probe order for locating citation lists.
var citationListFields = []string{"citations", "references"}

// Citations pulls display-only citations out of an arbitrary answer value.
// It probes "citations" then "references", first at the top level and then
// under "data". Entries that are not objects are skipped; nothing is
// validated.
func Citations(v any) []domain.Citation {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	if list, ok := citationList(m); ok {
		return list
	}
	if data, ok := m["data"].(map[string]any); ok {
		if list, ok := citationList(data); ok {
			return list
		}
	}
	return nil
}

func citationList(m map[string]any) ([]domain.Citation, bool) {
	for _, field := range citationListFields {
		raw, ok := m[field].([]any)
		if !ok || len(raw) == 0 {
			continue
		}
		out := make([]domain.Citation, 0, len(raw))
		for _, entry := range raw {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, domain.Citation{
				Source:  firstString(item, "source", "title"),
				URL:     firstString(item, "url"),
				Snippet: firstString(item, "snippet"),
			})
		}
		if len(out) > 0 {
			return out, true
		}
	}
	return nil, false
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
