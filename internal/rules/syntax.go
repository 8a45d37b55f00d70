package rules

import (
	"fmt"
	"strings"
	"unicode"

	"linecheck/internal/types"
)

// checkSyntax reports the first lexical error in the file. Only strings
// and brackets are checked; this is not a parser. When it fires, the name
// checks stand down since their token view of the file is unreliable.
func (e *Engine) checkSyntax(in *Input) []types.Diagnostic {
	p := in.syntaxProblem()
	if p == nil {
		return nil
	}
	return []types.Diagnostic{createResult(
		fmt.Sprintf("Syntax error: %s.", p.Message),
		p.Line,
		"",
	)}
}

func (e *Engine) checkSyntaxContext(in *Input) []types.Diagnostic {
	p := in.syntaxProblem()
	if p == nil || p.Line < 1 || p.Line > len(in.File.Lines) {
		return nil
	}
	text := strings.TrimRightFunc(in.File.Lines[p.Line-1].Text, unicode.IsSpace)
	return []types.Diagnostic{createResult("Line: "+text, p.Line, text)}
}
