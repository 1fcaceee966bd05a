package insight

import "strings"

// SplitBilingual splits a "Native (English)" keyword into its two halves.
// The English half keeps its parentheses. ok is false when the label does
// not carry both parentheses.
func SplitBilingual(label string) (native, english string, ok bool) {
	open, closing := "(", ")"
	if !strings.Contains(label, open) {
		open, closing = "（", "）"
	}
	if !strings.Contains(label, open) || !strings.Contains(label, closing) {
		return label, "", false
	}
	before, after, _ := strings.Cut(label, open)
	native = strings.TrimSpace(before)
	english = "(" + strings.TrimSpace(strings.ReplaceAll(after, closing, ")"))
	if native == "" {
		return label, "", false
	}
	return native, english, true
}

// Shorten truncates label to keep runes followed by "..", but only when it
// is longer than limit runes.
func Shorten(label string, limit, keep int) string {
	r := []rune(label)
	if len(r) <= limit {
		return label
	}
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + ".."
}
