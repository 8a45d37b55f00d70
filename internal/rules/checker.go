package rules

import (
	"fmt"
	"strings"

	"linecheck/internal/config"
	"linecheck/internal/types"
)

func (e *Engine) checkTrailingWhitespace(in *Input) []types.Diagnostic {
	var results []types.Diagnostic

	for _, line := range in.File.Lines {
		if line.Text != "" && trailingWhitespace(line.Text) != "" {
			results = append(results, createResult(
				"Trailing whitespace at end of line",
				line.Number,
				line.Text,
			))
		}
	}

	return results
}

func (e *Engine) checkLongLines(in *Input) []types.Diagnostic {
	var results []types.Diagnostic
	unit := "characters"
	if e.opts.LengthMode == config.LengthColumns {
		unit = "columns"
	}

	for _, line := range in.File.Lines {
		n := lineLength(line.Text, e.opts.LengthMode)
		if n > e.opts.MaxLineLength {
			results = append(results, createResult(
				fmt.Sprintf("Line is too long (%d > %d %s)", n, e.opts.MaxLineLength, unit),
				line.Number,
				line.Text,
			))
		}
	}

	return results
}

func (e *Engine) checkTodoFixme(in *Input) []types.Diagnostic {
	var results []types.Diagnostic

	for _, line := range in.File.Lines {
		todo := strings.Contains(line.Text, "TODO")
		fixme := strings.Contains(line.Text, "FIXME")
		var marker string
		switch {
		case todo && fixme:
			marker = "TODO/FIXME"
		case todo:
			marker = "TODO"
		case fixme:
			marker = "FIXME"
		default:
			continue
		}
		results = append(results, createResult(
			fmt.Sprintf("Found %s marker", marker),
			line.Number,
			line.Text,
		))
	}

	return results
}

// checkMixedIndent flags lines whose indentation holds both tabs and spaces,
// and indented lines whose trailing whitespace uses the other character.
func (e *Engine) checkMixedIndent(in *Input) []types.Diagnostic {
	var results []types.Diagnostic

	for _, line := range in.File.Lines {
		leading := leadingWhitespace(line.Text)
		if leading == "" {
			continue
		}
		mixed := strings.Contains(leading, "\t") && strings.Contains(leading, " ")
		if !mixed && !isBlank(line.Text) {
			trailing := trailingWhitespace(line.Text)
			mixed = (strings.Contains(leading, "\t") && strings.Contains(trailing, " ")) ||
				(strings.Contains(leading, " ") && strings.Contains(trailing, "\t"))
		}
		if mixed {
			results = append(results, createResult(
				"Mixed tabs and spaces in indentation",
				line.Number,
				line.Text,
			))
		}
	}

	return results
}

// checkInconsistentIndent reports, once per file, indentation that starts
// with tabs on some lines and with spaces on others.
func (e *Engine) checkInconsistentIndent(in *Input) []types.Diagnostic {
	var tabs, spaces int

	for _, line := range in.File.Lines {
		if isBlank(line.Text) {
			continue
		}
		switch line.Text[0] {
		case '\t':
			tabs++
		case ' ':
			spaces++
		}
	}

	if tabs == 0 || spaces == 0 {
		return nil
	}
	return []types.Diagnostic{createResult(
		fmt.Sprintf("Indentation mixes tabs (%d lines) and spaces (%d lines); use one consistently", tabs, spaces),
		0,
		"",
	)}
}
