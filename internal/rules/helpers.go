package rules

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"linecheck/internal/config"
	"linecheck/internal/types"
)

// Helper functions for rule creation

const tabWidth = 8

// createResult is a helper to create a Diagnostic with consistent formatting.
// Severity and rule ID are stamped by the engine.
func createResult(message string, line int, context string) types.Diagnostic {
	return types.Diagnostic{
		Message: message,
		Line:    line,
		Context: context,
	}
}

// leadingWhitespace returns the indentation of a line
func leadingWhitespace(text string) string {
	return text[:len(text)-len(strings.TrimLeft(text, " \t\f"))]
}

// trailingWhitespace returns the whitespace at the end of a line
func trailingWhitespace(text string) string {
	return text[len(strings.TrimRightFunc(text, unicode.IsSpace)):]
}

// isBlank checks if a line contains only whitespace
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// lineLength measures a line in runes, or in display columns with tabs
// expanded to 8-column stops.
func lineLength(text, mode string) int {
	if mode != config.LengthColumns {
		return len([]rune(text))
	}
	width := 0
	for _, r := range text {
		if r == '\t' {
			width += tabWidth - width%tabWidth
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}
