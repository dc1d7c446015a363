package ai

import (
	"regexp"
	"strings"
)

// Best-effort plaintext reduction of markdown-flavoured model output.
// Not a markdown parser: nested or malformed markup passes through.
var (
	headingRe = regexp.MustCompile(`#{1,6}\s`)
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.*?)\*`)
	fenceRe   = regexp.MustCompile("(?s)```(.*?)```")
)

// Sanitize strips presentation markup from generated text: heading
// markers, bold/italic delimiters, and code-fence wrappers. Inner text
// is preserved; the result is trimmed. Idempotent on clean text.
func Sanitize(content string) string {
	out := headingRe.ReplaceAllString(content, "")
	out = boldRe.ReplaceAllString(out, "$1")
	out = italicRe.ReplaceAllString(out, "$1")
	out = fenceRe.ReplaceAllStringFunc(out, func(block string) string {
		inner := fenceRe.FindStringSubmatch(block)[1]
		return strings.TrimSpace(inner)
	})
	return strings.TrimSpace(out)
}
