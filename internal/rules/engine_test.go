package rules

import (
	"reflect"
	"strings"
	"testing"

	"linecheck/internal/config"
	"linecheck/internal/source"
	"linecheck/internal/types"
)

func parse(t *testing.T, src string) *source.File {
	t.Helper()
	f, err := source.Parse("test.py", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func check(t *testing.T, e *Engine, src string) []types.Diagnostic {
	t.Helper()
	return e.Check(parse(t, src))
}

func byRule(diags []types.Diagnostic, id string) []types.Diagnostic {
	var out []types.Diagnostic
	for _, d := range diags {
		if d.RuleID == id {
			out = append(out, d)
		}
	}
	return out
}

func TestDefaultRules(t *testing.T) {
	e := NewEngine()
	var ids []string
	for _, r := range e.Rules() {
		ids = append(ids, r.ID)
		if r.Disabled != (r.ID == HardcodedSecretID) {
			t.Errorf("%s: Disabled = %v", r.ID, r.Disabled)
		}
	}
	want := []string{
		TrailingWhitespaceID, LongLineID, TodoFixmeID, MixedIndentID,
		InconsistentIndentID, SyntaxErrorID, SyntaxContextID,
		UndefinedNameID, UnusedImportID, HardcodedSecretID,
	}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
}

func TestCheckEmptyFile(t *testing.T) {
	if diags := check(t, NewEngine(), ""); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestCheckCleanFile(t *testing.T) {
	src := `import os


def main(argv):
    path = os.path.join("a", "b")
    for i, name in enumerate(argv):
        print(i, name, path)
    return len(argv)


if __name__ == "__main__":
    main([])
`
	if diags := check(t, NewEngine(), src); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestCheckTabIndentedLineWithTrailingSpaces(t *testing.T) {
	lines := make([]string, 0, 42)
	for i := 1; i < 42; i++ {
		lines = append(lines, "# filler")
	}
	lines = append(lines, "\tdef foo(): pass  ")

	diags := check(t, NewEngine(), strings.Join(lines, "\n")+"\n")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", diags)
	}
	if d := diags[0]; d.RuleID != MixedIndentID || d.Severity != types.SeverityError || d.Line != 42 {
		t.Errorf("unexpected first diagnostic: %+v", d)
	}
	if d := diags[1]; d.RuleID != TrailingWhitespaceID || d.Severity != types.SeverityWarning || d.Line != 42 {
		t.Errorf("unexpected second diagnostic: %+v", d)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	src := "import os\nx = undefined_thing  \n\t# TODO later\n  y = 1\n"
	e := NewEngine()
	f := parse(t, src)

	first := e.Check(f)
	second := e.Check(f)
	if len(first) == 0 {
		t.Fatal("expected some diagnostics")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestCheckSummaryMatchesDiagnostics(t *testing.T) {
	src := "import os  \n# FIXME\n\t x = 1\n"
	diags := check(t, NewEngine(), src)
	r := types.ScanResult{Diagnostics: diags}
	s := r.Summary()

	counts := map[types.Severity]int{}
	for _, d := range diags {
		counts[d.Severity]++
	}
	if s.Errors != counts[types.SeverityError] || s.Warnings != counts[types.SeverityWarning] || s.Notes != counts[types.SeverityNote] {
		t.Fatalf("summary %+v does not match %v", s, counts)
	}
	if s.Errors != 1 || s.Notes != 1 {
		t.Fatalf("unexpected summary %+v for %+v", s, diags)
	}
}

func TestApplyConfig(t *testing.T) {
	e := NewEngine()
	err := e.ApplyConfig(&config.Config{
		MaxLineLength: 10,
		Rules: map[string]config.RuleConfig{
			TodoFixmeID:       {Disabled: true},
			LongLineID:        {Severity: "error"},
			HardcodedSecretID: {Enabled: true},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	diags := check(t, e, "# TODO: a long comment\npassword = \"hunter2\"\n")
	if got := byRule(diags, TodoFixmeID); len(got) != 0 {
		t.Errorf("TODO_FIXME should be disabled: %+v", got)
	}
	long := byRule(diags, LongLineID)
	if len(long) != 2 || long[0].Severity != types.SeverityError {
		t.Errorf("expected 2 LONG_LINE errors, got %+v", long)
	}
	if got := byRule(diags, HardcodedSecretID); len(got) != 1 || got[0].Line != 2 {
		t.Errorf("expected 1 HARDCODED_SECRET on line 2, got %+v", got)
	}
}

func TestApplyConfigRejectsUnknownRules(t *testing.T) {
	err := NewEngine().ApplyConfig(&config.Config{
		Rules: map[string]config.RuleConfig{"NO_SUCH_RULE": {Disabled: true}},
	})
	if err == nil || !strings.Contains(err.Error(), "NO_SUCH_RULE") {
		t.Fatalf("expected unknown rule error, got %v", err)
	}
}

func TestApplyConfigRejectsBadSeverity(t *testing.T) {
	err := NewEngine().ApplyConfig(&config.Config{
		Rules: map[string]config.RuleConfig{LongLineID: {Severity: "fatal"}},
	})
	if err == nil || !strings.Contains(err.Error(), LongLineID) {
		t.Fatalf("expected severity error, got %v", err)
	}
}

func TestApplyConfigExtraBuiltins(t *testing.T) {
	e := NewEngine()
	if err := e.ApplyConfig(&config.Config{Builtins: []string{"app"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := byRule(check(t, e, "app.run()\n"), UndefinedNameID); len(got) != 0 {
		t.Fatalf("configured builtin reported as undefined: %+v", got)
	}
}
