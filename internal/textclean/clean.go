// Package textclean strips the lead-in and closing phrases that models echo
// back into metaphor strings, so the view can wrap them in its own frame.
package textclean

import (
	"regexp"
	"strings"
	"sync"
)

// Lead-in phrases framing the two halves of the metaphor pair.
const (
	OldPrefix = "停止像"
	NewPrefix = "开始像"

	// Suffix closes both halves: "停止像 X 一样思考".
	Suffix = "一样思考"
)

var (
	separatorRe = regexp.MustCompile(`^[:：\s]+`)
	suffixRe    = regexp.MustCompile(regexp.QuoteMeta(Suffix) + `[。！]?$`)

	prefixMu sync.Mutex
	prefixRe = map[string]*regexp.Regexp{}
)

func prefixPattern(prefix string) *regexp.Regexp {
	prefixMu.Lock()
	defer prefixMu.Unlock()
	re, ok := prefixRe[prefix]
	if !ok {
		re = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix))
		prefixRe[prefix] = re
	}
	return re
}

// Clean removes prefix (case-insensitive) from the start of s, then any
// colon or whitespace run after it, then the closing phrase with optional
// trailing punctuation, and trims the result.
func Clean(s, prefix string) string {
	if s == "" {
		return ""
	}
	if prefix != "" {
		s = prefixPattern(prefix).ReplaceAllString(s, "")
	}
	s = separatorRe.ReplaceAllString(s, "")
	s = suffixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// OldPattern cleans the "stop thinking like" half.
func OldPattern(s string) string { return Clean(s, OldPrefix) }

// NewMetaphor cleans the "start thinking like" half.
func NewMetaphor(s string) string { return Clean(s, NewPrefix) }
