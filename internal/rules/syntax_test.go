package rules

import (
	"testing"

	"linecheck/internal/types"
)

func TestSyntaxErrorUnterminatedString(t *testing.T) {
	src := "import os\nprint('hello)\nundefined_thing\n"
	diags := check(t, NewEngine(), src)

	errs := byRule(diags, SyntaxErrorID)
	if len(errs) != 1 {
		t.Fatalf("expected 1 syntax error, got %+v", diags)
	}
	if want := "Syntax error: unterminated string literal (detected at line 2)."; errs[0].Message != want || errs[0].Line != 2 {
		t.Errorf("got %+v, want %q on line 2", errs[0], want)
	}
	if errs[0].Severity != types.SeverityError {
		t.Errorf("severity = %v", errs[0].Severity)
	}

	notes := byRule(diags, SyntaxContextID)
	if len(notes) != 1 || notes[0].Message != "Line: print('hello)" || notes[0].Line != 2 {
		t.Errorf("unexpected context note %+v", notes)
	}
	if notes[0].Severity != types.SeverityNote {
		t.Errorf("severity = %v", notes[0].Severity)
	}

	if got := byRule(diags, UndefinedNameID); len(got) != 0 {
		t.Errorf("name checks should stand down: %+v", got)
	}
	if got := byRule(diags, UnusedImportID); len(got) != 0 {
		t.Errorf("name checks should stand down: %+v", got)
	}
}

func TestSyntaxErrorUnclosedBracket(t *testing.T) {
	src := "x = 1\nvalues = [\n    1,\n    2,\n"
	errs := byRule(check(t, NewEngine(), src), SyntaxErrorID)
	if len(errs) != 1 || errs[0].Line != 2 || errs[0].Message != "Syntax error: '[' was never closed." {
		t.Fatalf("unexpected diagnostics %+v", errs)
	}
}

func TestSyntaxErrorOrderedBeforeContext(t *testing.T) {
	diags := check(t, NewEngine(), "x = (1]\n")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", diags)
	}
	if diags[0].RuleID != SyntaxErrorID || diags[1].RuleID != SyntaxContextID {
		t.Fatalf("unexpected order %+v", diags)
	}
}

func TestSyntaxCleanFile(t *testing.T) {
	src := "d = {'a': [1, (2, 3)]}\ns = \"\"\"multi\nline\"\"\"\nprint(d, s)\n"
	diags := check(t, NewEngine(), src)
	if got := byRule(diags, SyntaxErrorID); len(got) != 0 {
		t.Fatalf("unexpected syntax errors %+v", got)
	}
	if got := byRule(diags, SyntaxContextID); len(got) != 0 {
		t.Fatalf("unexpected context notes %+v", got)
	}
}
