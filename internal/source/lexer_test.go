package source

import (
	"reflect"
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func countKind(toks []Token, k Kind) int {
	n := 0
	for _, t := range toks {
		if t.Kind == k {
			n++
		}
	}
	return n
}

func TestLexSimpleStatement(t *testing.T) {
	toks := Lex("x = foo(1, 2.5)\n")
	want := []string{"x", "=", "foo", "(", "1", ",", "2.5", ")", "\n"}
	if got := texts(toks); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	wantKinds := []Kind{Name, Op, Name, Op, Number, Op, Number, Op, Newline}
	if got := kinds(toks); !reflect.DeepEqual(got, wantKinds) {
		t.Fatalf("got kinds %v, want %v", got, wantKinds)
	}
}

func TestLexLogicalLines(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		newlines int
	}{
		{"semicolon", "x = 1; y = 2\n", 2},
		{"brackets span lines", "f(a,\n  b)\n", 1},
		{"backslash continuation", "x = 1 + \\\n  2\n", 1},
		{"blank and comment lines", "\n# comment\n\nx = 1\n\n", 1},
		{"no final newline", "x = 1", 1},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countKind(Lex(tt.src), Newline); got != tt.newlines {
				t.Fatalf("got %d newlines, want %d", got, tt.newlines)
			}
		})
	}
}

func TestLexTracksLineNumbers(t *testing.T) {
	toks := Lex("a = (1,\n     2)\nb = '''x\ny'''\nc\n")
	lines := map[string]int{}
	for _, tok := range toks {
		if tok.Kind == Name {
			lines[tok.Text] = tok.Line
		}
	}
	want := map[string]int{"a": 1, "b": 3, "c": 5}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestLexStrings(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{`'abc'`, "abc"},
		{`"it's"`, "it's"},
		{`rb'\x00'`, `\x00`},
		{`"a\"b"`, `a\"b`},
		{"\"\"\"one\ntwo\"\"\"", "one\ntwo"},
		{`'unterminated`, "unterminated"},
	}

	for _, tt := range tests {
		toks := Lex(tt.src)
		if len(toks) == 0 || toks[0].Kind != String {
			t.Errorf("%s: expected a string token, got %+v", tt.src, toks)
			continue
		}
		if toks[0].Value != tt.value {
			t.Errorf("%s: value %q, want %q", tt.src, toks[0].Value, tt.value)
		}
	}
}

func TestLexCommentInsideString(t *testing.T) {
	toks := Lex(`s = "# not a comment"  # a comment`)
	if got := countKind(toks, String); got != 1 {
		t.Fatalf("expected 1 string, got %d", got)
	}
	if toks[len(toks)-1].Kind != Newline {
		t.Fatalf("expected trailing newline token")
	}
	if got := len(toks); got != 4 {
		t.Fatalf("expected 4 tokens, got %d: %q", got, texts(toks))
	}
}

// fstringNames lists the non-attribute names in every field of an
// f-string token, nested f-strings included.
func fstringNames(tok Token) []string {
	var names []string
	for _, field := range tok.FStringFields {
		for j, t := range field {
			if t.Kind == Name && (j == 0 || !field[j-1].IsOp(".")) {
				names = append(names, t.Text)
			}
			if t.Kind == String {
				names = append(names, fstringNames(t)...)
			}
		}
	}
	return names
}

func TestLexFStringFields(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{`f"{name!r:>10} {obj.attr} {{literal}}"`, []string{"name", "obj"}},
		{`f"{total:=^8} {d['k']} {fn(x)}"`, []string{"total", "d", "fn", "x"}},
		{`f"{v:{width}.{prec}}"`, []string{"v", "width", "prec"}},
		{`f"{x:{os.sep}}"`, []string{"x", "os"}},
		{`f"{a != b} {'}' if c else d}"`, []string{"a", "b", "if", "c", "else", "d"}},
		{`f"{f'{inner}'}"`, []string{"inner"}},
		{`"{name}"`, nil},
	}

	for _, tt := range tests {
		toks := Lex(tt.src)
		if len(toks) == 0 || toks[0].Kind != String {
			t.Errorf("%s: expected a string token, got %+v", tt.src, toks)
			continue
		}
		if got := fstringNames(toks[0]); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestLexFStringFieldTokens(t *testing.T) {
	toks := Lex(`f"{x is not None} {dict(a=1)}"`)
	fields := toks[0].FStringFields
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if got, want := texts(fields[0]), []string{"x", "is", "not", "None"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := texts(fields[1]), []string{"dict", "(", "a", "=", "1", ")"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLexFStringFieldLines(t *testing.T) {
	toks := Lex("x = 1\ns = f\"\"\"\n\n{value}\"\"\"\n")
	for _, tok := range toks {
		if tok.Kind != String {
			continue
		}
		if len(tok.FStringFields) != 1 || tok.FStringFields[0][0].Line != 4 {
			t.Fatalf("expected field on line 4, got %+v", tok.FStringFields)
		}
		return
	}
	t.Fatal("no string token")
}

func TestTokenizeProblems(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unclosed bracket", "x = (1,\n     2\n", 1, "'(' was never closed"},
		{"innermost unclosed", "f(a,\n  b[1\n", 2, "'[' was never closed"},
		{"unmatched close", "x = 1\ny = 2)\n", 2, "unmatched ')'"},
		{"mismatched close", "x = [1)\n", 1, "closing parenthesis ')' does not match opening parenthesis '['"},
		{"unterminated string", "s = 'abc\nt = 1\n", 1, "unterminated string literal (detected at line 1)"},
		{"unterminated triple", "x = 1\ns = \"\"\"abc\nmore\n", 2, "unterminated triple-quoted string literal (detected at line 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, problems := Tokenize(tt.src)
			if len(problems) == 0 {
				t.Fatal("expected a problem")
			}
			if p := problems[0]; p.Line != tt.line || p.Message != tt.msg {
				t.Fatalf("got %+v, want line %d %q", p, tt.line, tt.msg)
			}
		})
	}
}

func TestTokenizeCleanSource(t *testing.T) {
	src := "d = {'a': [1, (2, 3)]}\ns = '''multi\nline'''\nf(x)[0]\n"
	if _, problems := Tokenize(src); len(problems) != 0 {
		t.Fatalf("unexpected problems %+v", problems)
	}
}

func TestLexOperatorsAndNumbers(t *testing.T) {
	toks := Lex("a **= 1e-5 // 0x1F -> b := ...")
	want := []string{"a", "**=", "1e-5", "//", "0x1F", "->", "b", ":=", "...", ""}
	if got := texts(toks); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLexUnicodeIdentifiers(t *testing.T) {
	toks := Lex("café = naïve\n")
	if toks[0].Kind != Name || toks[0].Text != "café" {
		t.Fatalf("unexpected first token: %+v", toks[0])
	}
	if toks[2].Kind != Name || toks[2].Text != "naïve" {
		t.Fatalf("unexpected third token: %+v", toks[2])
	}
}
