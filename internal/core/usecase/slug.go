package usecase

import (
	"path/filepath"
	"strings"
)

// DocumentID derives the deterministic index id for a filename: extension
// stripped, lowercased, non-alphanumeric runs collapsed to single hyphens.
// The same document re-uploaded therefore upserts under the same id.
func DocumentID(prefix, filename string) string {
	slug := Slug(filename)
	if slug == "" {
		slug = "untitled"
	}
	if prefix == "" {
		return slug
	}
	return prefix + "-" + slug
}

// Slug normalizes a filename into a lowercase hyphenated identifier.
func Slug(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.ToLower(base)

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
