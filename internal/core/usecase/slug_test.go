package usecase

import "testing"

func TestDocumentID(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"Report v1.pdf", "doc-report-v1"},
		{"Executive  Order__14067.PDF", "doc-executive-order-14067"},
		{"policy.txt", "doc-policy"},
		{"noext", "doc-noext"},
		{"___.pdf", "doc-untitled"},
		{"", "doc-untitled"},
		{"dir/Nested File.pdf", "doc-nested-file"},
	}
	for _, tc := range cases {
		if got := DocumentID("doc", tc.filename); got != tc.want {
			t.Fatalf("DocumentID(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestDocumentIDNoPrefix(t *testing.T) {
	if got := DocumentID("", "Report v1.pdf"); got != "report-v1" {
		t.Fatalf("DocumentID() = %q", got)
	}
}

func TestSlugDeterministic(t *testing.T) {
	a := Slug("Report v1.pdf")
	b := Slug("Report v1.pdf")
	if a != b {
		t.Fatalf("slug not deterministic: %q vs %q", a, b)
	}
}
