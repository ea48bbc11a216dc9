package sanitize

import (
	"regexp"
	"strings"
)

// Markers left in place of removed content. They contain nothing any later
// pass matches, which keeps Clean idempotent.
const (
	Blocked  = "[blocked]"
	Redacted = "[redacted]"
)

// DefaultMaxLen caps output length when no override is configured.
const DefaultMaxLen = 5000

var (
	reTag      = regexp.MustCompile(`<[^>]*>`)
	reEntity   = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)
	reScheme   = regexp.MustCompile(`(?i)(javascript|vbscript|data)\s*:`)
	reHandlerQ = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*')`)
	reHandler  = regexp.MustCompile(`(?i)\bon\w+\s*=\s*[^\s>]+`)

	// Whole-word API/keyword denylist. Not an HTML parser: creative payloads
	// can survive, the guaranteed floor is pinned by tests.
	reKeyword = regexp.MustCompile(`(?i)\b(script|iframe|object|embed|applet|eval|exec|expression|innerHTML|outerHTML|fetch|XMLHttpRequest|WebSocket|EventSource|Worker|importScripts|cookie|localStorage|sessionStorage|indexedDB|alert|prompt|confirm|setTimeout|setInterval|Function|srcdoc|onload|onerror|onclick)\b`)

	reStructural = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`),
		regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe\s*>`),
		regexp.MustCompile(`(?is)<object[^>]*>.*?</object\s*>`),
		regexp.MustCompile(`(?is)<embed[^>]*>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg\s*>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style\s*>`),
		regexp.MustCompile(`(?i)eval\s*\([^)]*\)`),
		regexp.MustCompile(`(?i)\.\s*innerHTML\s*=`),
		regexp.MustCompile(`(?i)document\.write(ln)?\s*\([^)]*\)`),
	}

	reIPv4 = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	reURL  = regexp.MustCompile(`(?i)\b(https?|ftp)://[^\s]+`)
)

// Sanitizer cleans user-supplied text through a fixed pass order.
type Sanitizer struct {
	maxLen int
}

func New(maxLen int) *Sanitizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Sanitizer{maxLen: maxLen}
}

// Clean runs the full pass pipeline. Pure, idempotent: feeding the output
// back in returns it unchanged.
func (s *Sanitizer) Clean(text string) string {
	out := reTag.ReplaceAllString(text, "")
	out = reEntity.ReplaceAllString(out, "")
	out = reScheme.ReplaceAllString(out, Blocked)
	out = reHandlerQ.ReplaceAllString(out, "")
	out = reHandler.ReplaceAllString(out, "")
	out = reKeyword.ReplaceAllString(out, Blocked)
	for _, re := range reStructural {
		out = re.ReplaceAllString(out, Blocked)
	}
	out = reIPv4.ReplaceAllString(out, Redacted)
	out = reURL.ReplaceAllString(out, Redacted)

	out = strings.TrimSpace(out)
	if runes := []rune(out); len(runes) > s.maxLen {
		out = strings.TrimSpace(string(runes[:s.maxLen]))
	}
	return out
}
