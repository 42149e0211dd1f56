package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// PreprocessAssistantText normalizes agent output before rendering.
func PreprocessAssistantText(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes (helps readability)
	return strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)
}

// RenderMarkdown converts assistant markdown to HTML for the console page.
func RenderMarkdown(text string) string {
	return string(markdown.ToHTML([]byte(PreprocessAssistantText(text)), nil, nil))
}
