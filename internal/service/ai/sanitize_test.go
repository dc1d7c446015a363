package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHeadings(t *testing.T) {
	assert.Equal(t, "Title", Sanitize("## Title"))
	assert.Equal(t, "Deep", Sanitize("###### Deep"))
}

func TestSanitizeBoldAndItalic(t *testing.T) {
	assert.Equal(t, "bold and italic", Sanitize("**bold** and *italic*"))
}

func TestSanitizeCodeFence(t *testing.T) {
	assert.Equal(t, "print(\"hi\")", Sanitize("```\nprint(\"hi\")\n```"))
}

func TestSanitizeCombined(t *testing.T) {
	raw := "## Title\n**bold** and *italic* and ```code```"
	assert.Equal(t, "Title\nbold and italic and code", Sanitize(raw))
}

func TestSanitizeTrimsResult(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  hello \n\n"))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"## Title\n**bold** and *italic* and ```code```",
		"plain text, no markup",
		"### a\n```\nx = 1\n```\n**b**",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "sanitizing twice must equal sanitizing once: %q", in)
	}
}

func TestSanitizePassesThroughMalformedMarkup(t *testing.T) {
	// Double backticks are not a fence and pass through untouched.
	assert.Equal(t, "``not a fence``", Sanitize("``not a fence``"))
	// An unclosed ** collapses via the italic rule; inner text survives.
	assert.Equal(t, "unclosed bold", Sanitize("**unclosed bold"))
}
