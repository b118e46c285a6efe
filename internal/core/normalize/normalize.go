// Package normalize turns loosely-typed pipeline responses into stable shapes
// for display. The external service enforces no schema, so everything here is
// best-effort field probing and must be total over JSON-safe input.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultAnswerFields is the probe order for locating the human-readable
// answer inside an arbitrary response, applied at the top level first and
// then one level down under "data".
var DefaultAnswerFields = []string{"answer", "output", "message", "text", "result"}

// Normalizer probes configured fields; the zero value uses the defaults.
type Normalizer struct {
	fields []string
}

// New builds a Normalizer with a custom probe order. Blank entries are
// dropped; an empty list falls back to DefaultAnswerFields.
func New(fields ...string) *Normalizer {
	cleaned := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	return &Normalizer{fields: cleaned}
}

func (n *Normalizer) answerFields() []string {
	if n == nil || len(n.fields) == 0 {
		return DefaultAnswerFields
	}
	return n.fields
}

// BestText extracts a human-readable answer from an arbitrary decoded JSON
// value. It never fails: unknown shapes degrade to pretty-printed JSON, and
// unserializable values to a fmt coercion.
func (n *Normalizer) BestText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	if m, ok := v.(map[string]any); ok {
		if text, ok := n.probe(m); ok {
			return text
		}
		if data, ok := m["data"].(map[string]any); ok {
			if text, ok := n.probe(data); ok {
				return text
			}
		}
	}

	if raw, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(raw)
	}
	return fmt.Sprintf("%v", v)
}

// BestText applies the default probe order.
func BestText(v any) string {
	return (*Normalizer)(nil).BestText(v)
}

func (n *Normalizer) probe(m map[string]any) (string, bool) {
	for _, field := range n.answerFields() {
		value, ok := m[field]
		if !ok || value == nil {
			continue
		}
		if s, ok := value.(string); ok {
			if strings.TrimSpace(s) == "" {
				continue
			}
			return s, true
		}
		if isEmptyContainer(value) {
			continue
		}
		return coerce(value), true
	}
	return "", false
}

func isEmptyContainer(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func coerce(v any) string {
	if raw, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(raw)
	}
	return fmt.Sprintf("%v", v)
}
