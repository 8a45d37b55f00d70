package source

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the category of a lexed token
type Kind int

const (
	Name Kind = iota
	Op
	Number
	String
	Newline
)

// Token is a single lexical element of Python-like source.
// Comments and whitespace are never emitted.
type Token struct {
	Kind Kind
	Text string
	Line int

	// Value is the body of a string literal, without prefix and quotes.
	Value string
	// FStringFields holds the tokens of each f-string replacement field,
	// fields nested in format specs included. Lines are file lines.
	FStringFields [][]Token
}

// Problem is a lexical error: an unterminated string or an unbalanced
// bracket. Line is where the string or bracket starts.
type Problem struct {
	Line    int
	Message string
}

type bracket struct {
	char byte
	line int
}

// IsOp reports whether the token is the operator op
func (t Token) IsOp(op string) bool {
	return t.Kind == Op && t.Text == op
}

var threeCharOps = []string{"**=", "//=", ">>=", "<<=", "..."}

var twoCharOps = []string{
	"==", "!=", "<=", ">=", ":=", "->", "**", "//", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

type lexer struct {
	src      string
	pos      int
	line     int
	brackets []bracket
	tokens   []Token
	problems []Problem
}

// Lex splits src into tokens. A Newline token ends every logical line:
// a physical newline outside brackets and not escaped by a backslash, or a
// semicolon outside brackets. Unterminated strings run to the end of their
// line (or of the file for triple-quoted strings).
func Lex(src string) []Token {
	tokens, _ := Tokenize(src)
	return tokens
}

// Tokenize is Lex that also returns the lexical problems it ran into,
// in the order they were found.
func Tokenize(src string) ([]Token, []Problem) {
	l := &lexer{src: src, line: 1}
	l.run()
	return l.tokens, l.problems
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			if len(l.brackets) == 0 {
				l.endLogicalLine("\n")
			}
			l.line++
			l.pos++
		case c == '\\' && l.peek(1) == '\n':
			l.line++
			l.pos += 2
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' || c == '\\':
			l.pos++
		case c == '"' || c == '\'':
			l.lexString("")
		case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
			l.lexNumber()
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if isIdentStart(r) {
				l.lexName()
				continue
			}
			if r == utf8.RuneError && size <= 1 {
				l.pos++
				continue
			}
			l.lexOp()
		}
	}
	l.endLogicalLine("")
	if n := len(l.brackets); n > 0 {
		open := l.brackets[n-1]
		l.problem(open.line, fmt.Sprintf("'%c' was never closed", open.char))
	}
}

func (l *lexer) problem(line int, message string) {
	l.problems = append(l.problems, Problem{Line: line, Message: message})
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

// endLogicalLine emits a Newline unless the previous token already ended a line
func (l *lexer) endLogicalLine(text string) {
	if len(l.tokens) == 0 || l.tokens[len(l.tokens)-1].Kind == Newline {
		return
	}
	l.emit(Token{Kind: Newline, Text: text, Line: l.line})
}

func (l *lexer) lexName() {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	word := l.src[start:l.pos]
	if l.pos < len(l.src) && (l.src[l.pos] == '"' || l.src[l.pos] == '\'') && isStringPrefix(word) {
		l.lexString(word)
		return
	}
	l.emit(Token{Kind: Name, Text: word, Line: l.line})
}

func (l *lexer) lexNumber() {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDigit(c) || c == '.' || c == '_' || isASCIILetter(c) {
			// exponent sign: 1e-5, 2E+10
			if (c == 'e' || c == 'E') && (l.peek(1) == '+' || l.peek(1) == '-') && !strings.HasPrefix(strings.ToLower(l.src[start:l.pos]), "0x") {
				l.pos += 2
				continue
			}
			l.pos++
			continue
		}
		break
	}
	l.emit(Token{Kind: Number, Text: l.src[start:l.pos], Line: l.line})
}

func (l *lexer) lexOp() {
	for _, op := range threeCharOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			l.emit(Token{Kind: Op, Text: op, Line: l.line})
			return
		}
	}
	for _, op := range twoCharOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			l.emit(Token{Kind: Op, Text: op, Line: l.line})
			return
		}
	}

	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	op := l.src[l.pos : l.pos+size]
	l.pos += size

	switch op {
	case "(", "[", "{":
		l.brackets = append(l.brackets, bracket{char: op[0], line: l.line})
	case ")", "]", "}":
		l.closeBracket(op[0])
	case ";":
		if len(l.brackets) == 0 {
			l.endLogicalLine(";")
			return
		}
	}
	l.emit(Token{Kind: Op, Text: op, Line: l.line})
}

func (l *lexer) closeBracket(c byte) {
	n := len(l.brackets)
	if n == 0 {
		l.problem(l.line, fmt.Sprintf("unmatched '%c'", c))
		return
	}
	open := l.brackets[n-1]
	l.brackets = l.brackets[:n-1]
	if pairs[open.char] != c {
		l.problem(l.line, fmt.Sprintf("closing parenthesis '%c' does not match opening parenthesis '%c'", c, open.char))
	}
}

var pairs = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// lexString consumes a string literal starting at the opening quote
func (l *lexer) lexString(prefix string) {
	startLine := l.line
	start := l.pos - len(prefix)
	quote := l.src[l.pos]
	triple := l.peek(1) == quote && l.peek(2) == quote

	delim := 1
	if triple {
		delim = 3
	}
	l.pos += delim
	bodyStart := l.pos
	bodyEnd := -1

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			if l.peek(1) == '\n' {
				l.line++
			}
			l.pos += 2
			continue
		}
		if c == '\n' {
			if !triple {
				break
			}
			l.line++
			l.pos++
			continue
		}
		if c == quote && (!triple || (l.peek(1) == quote && l.peek(2) == quote)) {
			bodyEnd = l.pos
			l.pos += delim
			break
		}
		l.pos++
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
	if bodyEnd < 0 {
		bodyEnd = l.pos
		kind := "string literal"
		if triple {
			kind = "triple-quoted string literal"
		}
		l.problem(startLine, fmt.Sprintf("unterminated %s (detected at line %d)", kind, l.line))
	}

	tok := Token{
		Kind:  String,
		Text:  l.src[start:l.pos],
		Line:  startLine,
		Value: l.src[bodyStart:bodyEnd],
	}
	if strings.ContainsAny(prefix, "fF") {
		for _, field := range fieldExprs(tok.Value) {
			line := startLine + strings.Count(tok.Value[:field.offset], "\n")
			if toks := fieldTokens(field.text, line); len(toks) > 0 {
				tok.FStringFields = append(tok.FStringFields, toks)
			}
		}
	}
	l.emit(tok)
}

type fieldExpr struct {
	text   string
	offset int
}

// fieldExprs returns the expressions of the replacement fields in an
// f-string body, with their byte offsets.
func fieldExprs(body string) []fieldExpr {
	var out []fieldExpr
	for i := 0; i < len(body); i++ {
		if body[i] != '{' {
			continue
		}
		if i+1 < len(body) && body[i+1] == '{' {
			i++
			continue
		}
		out, i = replacementField(body, i+1, out)
	}
	return out
}

// replacementField appends the expression of the field starting at start
// (just past the '{') and of any field nested in its format spec. It
// returns the index of the closing '}'. A walrus must be parenthesized to
// count as part of the expression.
func replacementField(body string, start int, out []fieldExpr) ([]fieldExpr, int) {
	depth := 0
	for i := start; i < len(body); i++ {
		switch c := body[i]; c {
		case '\'', '"':
			if j := strings.IndexByte(body[i+1:], c); j >= 0 {
				i += j + 1
			}
		case '(', '[', '{':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '}':
			if depth == 0 {
				return append(out, fieldExpr{body[start:i], start}), i
			}
			depth--
		case '!':
			if depth == 0 && (i+1 >= len(body) || body[i+1] != '=') {
				return formatSpec(body, i+1, append(out, fieldExpr{body[start:i], start}))
			}
		case ':':
			if depth == 0 {
				return formatSpec(body, i+1, append(out, fieldExpr{body[start:i], start}))
			}
		}
	}
	return append(out, fieldExpr{body[start:], start}), len(body)
}

// formatSpec skips a conversion and format spec up to the field's closing
// '}', collecting nested fields such as the width in {x:{width}}.
func formatSpec(body string, start int, out []fieldExpr) ([]fieldExpr, int) {
	for i := start; i < len(body); i++ {
		switch body[i] {
		case '{':
			out, i = replacementField(body, i+1, out)
		case '}':
			return out, i
		}
	}
	return out, len(body)
}

// fieldTokens lexes one field expression that starts on the given line
func fieldTokens(expr string, line int) []Token {
	var toks []Token
	for _, t := range Lex(expr) {
		if t.Kind != Newline {
			toks = append(toks, t)
		}
	}
	shiftLines(toks, line-1)
	return toks
}

func shiftLines(toks []Token, delta int) {
	for i := range toks {
		toks[i].Line += delta
		for _, field := range toks[i].FStringFields {
			shiftLines(field, delta)
		}
	}
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "b", "f", "u", "rb", "br", "fr", "rf":
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
