package rules

import (
	"fmt"
	"sort"
	"strings"

	"linecheck/internal/source"
	"linecheck/internal/types"
)

// The name checks are token heuristics over Python-like source. They do not
// resolve scopes: a name bound anywhere in the file counts as bound
// everywhere, and a name is "used" wherever it appears outside an import
// statement, an attribute position or a keyword-argument position.

type importBinding struct {
	name   string
	line   int
	future bool
}

type nameUse struct {
	name string
	line int
}

type nameIndex struct {
	bound      map[string]bool
	imports    []importBinding
	uses       []nameUse
	refs       map[string]int
	starImport bool
}

// nameIndex indexes the file's bindings and uses on first call
func (in *Input) nameIndex() *nameIndex {
	if in.names == nil {
		in.names = indexNames(in.Tokens())
	}
	return in.names
}

func indexNames(tokens []source.Token) *nameIndex {
	idx := &nameIndex{
		bound: make(map[string]bool),
		refs:  make(map[string]int),
	}
	for _, stmt := range splitStatements(tokens) {
		for _, seg := range splitCompound(stmt) {
			idx.segment(seg)
		}
	}
	return idx
}

// splitStatements cuts the token stream at Newline tokens
func splitStatements(tokens []source.Token) [][]source.Token {
	var stmts [][]source.Token
	start := 0
	for i, t := range tokens {
		if t.Kind == source.Newline {
			if i > start {
				stmts = append(stmts, tokens[start:i])
			}
			start = i + 1
		}
	}
	if start < len(tokens) {
		stmts = append(stmts, tokens[start:])
	}
	return stmts
}

// splitCompound separates a compound statement header ("if x:") from a
// body written on the same line.
func splitCompound(stmt []source.Token) [][]source.Token {
	if !isCompoundHeader(stmt) {
		return [][]source.Token{stmt}
	}
	depth, lambdas := 0, 0
	for i, t := range stmt {
		if t.Kind == source.Name && t.Text == "lambda" && depth == 0 {
			lambdas++
			continue
		}
		if t.Kind != source.Op {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth > 0 {
				depth--
			}
		case ":":
			if depth != 0 {
				continue
			}
			if lambdas > 0 {
				lambdas--
				continue
			}
			header := stmt[:i+1]
			if i+1 >= len(stmt) {
				return [][]source.Token{header}
			}
			return append([][]source.Token{header}, splitCompound(stmt[i+1:])...)
		}
	}
	return [][]source.Token{stmt}
}

func isCompoundHeader(stmt []source.Token) bool {
	first := stmt[0]
	if first.Kind != source.Name {
		return false
	}
	if compoundKeywords[first.Text] {
		return true
	}
	// soft keywords: "match x:" and "case y:" but not match(x) or case = 1
	if (first.Text == "match" || first.Text == "case") && len(stmt) > 1 && topLevelColon(stmt) > 0 {
		next := stmt[1]
		return !(next.IsOp("=") || next.IsOp(".") || next.IsOp(",") || next.IsOp(":"))
	}
	return false
}

// topLevelColon returns the index of the first ":" outside brackets, or -1
func topLevelColon(toks []source.Token) int {
	depth := 0
	for i, t := range toks {
		if t.Kind != source.Op {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth > 0 {
				depth--
			}
		case ":":
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (idx *nameIndex) bind(name string) {
	if name != "" && !pythonKeywords[name] {
		idx.bound[name] = true
	}
}

func (idx *nameIndex) segment(toks []source.Token) {
	if len(toks) > 0 && toks[0].Kind == source.Name && toks[0].Text == "async" {
		toks = toks[1:]
	}
	if len(toks) == 0 {
		return
	}

	first := toks[0]
	if first.Kind == source.Name {
		switch first.Text {
		case "import":
			idx.importStatement(toks)
			return
		case "from":
			if hasKeyword(toks, "import") {
				idx.fromImportStatement(toks)
				return
			}
		case "def":
			if len(toks) > 1 && toks[1].Kind == source.Name {
				idx.bind(toks[1].Text)
			}
			idx.bindParams(toks)
		case "class":
			if len(toks) > 1 && toks[1].Kind == source.Name {
				idx.bind(toks[1].Text)
			}
		case "global", "nonlocal":
			for _, t := range toks[1:] {
				if t.Kind == source.Name {
					idx.bind(t.Text)
				}
			}
		case "case":
			if toks[len(toks)-1].IsOp(":") {
				idx.bindPattern(toks[1 : len(toks)-1])
			}
		}
	}

	idx.bindClauses(toks)
	idx.bindAssignment(toks)
	idx.collectUses(toks)
}

func hasKeyword(toks []source.Token, kw string) bool {
	for _, t := range toks {
		if t.Kind == source.Name && t.Text == kw {
			return true
		}
	}
	return false
}

// splitTopLevel splits tokens at commas outside brackets
func splitTopLevel(toks []source.Token) [][]source.Token {
	var parts [][]source.Token
	depth, start := 0, 0
	for i, t := range toks {
		if t.Kind != source.Op {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth > 0 {
				depth--
			}
		case ",":
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

// importStatement handles "import a.b as c, d"
func (idx *nameIndex) importStatement(toks []source.Token) {
	for _, item := range splitTopLevel(toks[1:]) {
		name := importedName(item)
		if name == "" {
			continue
		}
		idx.bind(name)
		idx.imports = append(idx.imports, importBinding{name: name, line: toks[0].Line})
	}
}

// fromImportStatement handles "from m import a as b, (c, d)" and star imports
func (idx *nameIndex) fromImportStatement(toks []source.Token) {
	k := 0
	var module strings.Builder
	for i, t := range toks[1:] {
		if t.Kind == source.Name && t.Text == "import" {
			k = i + 1
			break
		}
		module.WriteString(t.Text)
	}
	future := module.String() == "__future__"

	var names []source.Token
	for _, t := range toks[k+1:] {
		if t.IsOp("(") || t.IsOp(")") {
			continue
		}
		names = append(names, t)
	}
	for _, item := range splitTopLevel(names) {
		if len(item) == 1 && item[0].IsOp("*") {
			idx.starImport = true
			continue
		}
		name := importedName(item)
		if name == "" {
			continue
		}
		idx.bind(name)
		idx.imports = append(idx.imports, importBinding{name: name, line: toks[0].Line, future: future})
	}
}

// importedName is the name an import item binds: the alias if present,
// otherwise the first dotted component.
func importedName(item []source.Token) string {
	for i, t := range item {
		if t.Kind == source.Name && t.Text == "as" && i+1 < len(item) && item[i+1].Kind == source.Name {
			return item[i+1].Text
		}
	}
	for _, t := range item {
		if t.Kind == source.Name {
			return t.Text
		}
	}
	return ""
}

// bindParams binds the parameter names of "def f(a, b: int = 1, *args, **kw)"
func (idx *nameIndex) bindParams(toks []source.Token) {
	open := -1
	for i, t := range toks {
		if t.IsOp("(") {
			open = i
			break
		}
	}
	if open < 0 {
		return
	}
	idx.bindParamList(toks[open+1:], ")")
}

// bindParamList binds names in parameter position until the closing token
// at depth zero: ")" for def, ":" for lambda.
func (idx *nameIndex) bindParamList(toks []source.Token, closer string) {
	depth := 0
	for i, t := range toks {
		if t.Kind == source.Op {
			switch t.Text {
			case "(", "[", "{":
				depth++
				continue
			case ")", "]", "}":
				if depth == 0 && t.Text == closer {
					return
				}
				depth--
				continue
			case ":":
				if depth == 0 && closer == ":" {
					return
				}
			}
		}
		if depth != 0 || t.Kind != source.Name {
			continue
		}
		if i == 0 || toks[i-1].IsOp(",") || toks[i-1].IsOp("*") || toks[i-1].IsOp("**") {
			idx.bind(t.Text)
		}
	}
}

// bindClauses binds "as" targets, for-loop and comprehension targets,
// lambda parameters and walrus targets anywhere in the segment.
func (idx *nameIndex) bindClauses(toks []source.Token) {
	for i, t := range toks {
		switch {
		case t.Kind == source.Name && t.Text == "as" && i+1 < len(toks):
			idx.bindTargetRun(toks[i+1:], nil)
		case t.Kind == source.Name && t.Text == "for":
			idx.bindTargetRun(toks[i+1:], func(t source.Token) bool {
				return t.Kind == source.Name && t.Text == "in"
			})
		case t.Kind == source.Name && t.Text == "lambda":
			idx.bindParamList(toks[i+1:], ":")
		case t.IsOp(":=") && i > 0 && toks[i-1].Kind == source.Name:
			idx.bind(toks[i-1].Text)
		}
	}
}

// bindTargetRun binds the target names at the start of toks. Without a
// stop predicate the run is a single name or one parenthesized group.
func (idx *nameIndex) bindTargetRun(toks []source.Token, stop func(source.Token) bool) {
	if stop == nil {
		if len(toks) == 0 {
			return
		}
		if toks[0].Kind == source.Name {
			idx.bind(toks[0].Text)
			return
		}
		if !toks[0].IsOp("(") && !toks[0].IsOp("[") {
			return
		}
		depth := 0
		for i, t := range toks {
			if t.IsOp("(") || t.IsOp("[") {
				depth++
			} else if t.IsOp(")") || t.IsOp("]") {
				depth--
				if depth == 0 {
					idx.bindTargets(toks[:i+1])
					return
				}
			}
		}
		return
	}
	for i, t := range toks {
		if stop(t) {
			idx.bindTargets(toks[:i])
			return
		}
	}
}

// bindAssignment binds the targets left of the last top-level "="
// and the target of an annotated assignment ("x: int = 1").
func (idx *nameIndex) bindAssignment(toks []source.Token) {
	if len(toks) >= 2 && toks[0].Kind == source.Name && !pythonKeywords[toks[0].Text] && toks[1].IsOp(":") {
		idx.bind(toks[0].Text)
		return
	}

	depth, lastEq := 0, -1
	for i, t := range toks {
		if t.Kind != source.Op {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth > 0 {
				depth--
			}
		case "=":
			if depth == 0 {
				lastEq = i
			}
		}
	}
	if lastEq <= 0 {
		return
	}
	target := toks[:lastEq]
	// "self.x: T = v" annotates an attribute; the annotation is not a target
	if colon := topLevelColon(target); colon >= 0 {
		target = target[:colon]
	}
	idx.bindTargets(target)
}

// bindTargets binds plain names in an assignment target list. Names
// inside subscripts or calls, and attribute names, are not targets.
func (idx *nameIndex) bindTargets(toks []source.Token) {
	var grouping []bool
	inTarget := func() bool {
		for _, g := range grouping {
			if !g {
				return false
			}
		}
		return true
	}

	for i, t := range toks {
		switch {
		case t.IsOp("(") || t.IsOp("[") || t.IsOp("{"):
			grouping = append(grouping, i == 0 || !endsValue(toks[i-1]))
		case t.IsOp(")") || t.IsOp("]") || t.IsOp("}"):
			if len(grouping) > 0 {
				grouping = grouping[:len(grouping)-1]
			}
		case t.Kind == source.Name && !pythonKeywords[t.Text]:
			if !inTarget() {
				continue
			}
			if i > 0 && toks[i-1].IsOp(".") {
				continue
			}
			if i+1 < len(toks) && (toks[i+1].IsOp(".") || toks[i+1].IsOp("(") || toks[i+1].IsOp("[")) {
				continue
			}
			idx.bind(t.Text)
		}
	}
}

// bindPattern binds capture names in a match-case pattern
func (idx *nameIndex) bindPattern(toks []source.Token) {
	for i, t := range toks {
		if t.Kind != source.Name || pythonKeywords[t.Text] {
			continue
		}
		if i > 0 && toks[i-1].IsOp(".") {
			continue
		}
		if i+1 < len(toks) && (toks[i+1].IsOp("(") || toks[i+1].IsOp(".") || toks[i+1].IsOp("=")) {
			continue
		}
		idx.bind(t.Text)
	}
}

// endsValue reports whether a bracket after t opens a call or subscript
func endsValue(t source.Token) bool {
	switch t.Kind {
	case source.Name:
		return !pythonKeywords[t.Text] || t.Text == "None" || t.Text == "True" || t.Text == "False"
	case source.String, source.Number:
		return true
	case source.Op:
		return t.Text == ")" || t.Text == "]" || t.Text == "}"
	}
	return false
}

// collectUses records names read by the segment
func (idx *nameIndex) collectUses(toks []source.Token) {
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case source.Op:
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
		case source.String:
			for _, field := range t.FStringFields {
				idx.bindClauses(field)
				idx.collectUses(field)
			}
			if isIdentifier(t.Value) {
				idx.refs[t.Value]++
			}
		case source.Name:
			if pythonKeywords[t.Text] {
				continue
			}
			if i > 0 && toks[i-1].IsOp(".") {
				continue
			}
			if depth > 0 && i > 0 && i+1 < len(toks) && toks[i+1].IsOp("=") &&
				(toks[i-1].IsOp("(") || toks[i-1].IsOp(",")) {
				continue
			}
			idx.use(t.Text, t.Line)
		}
	}
}

func (idx *nameIndex) use(name string, line int) {
	idx.uses = append(idx.uses, nameUse{name: name, line: line})
	idx.refs[name]++
}

// checkUndefinedNames reports names that are used but never bound
func (e *Engine) checkUndefinedNames(in *Input) []types.Diagnostic {
	if in.syntaxProblem() != nil {
		return nil
	}
	idx := in.nameIndex()
	if idx.starImport {
		return nil
	}

	known := func(name string) bool {
		return idx.bound[name] || pythonBuiltins[name] || implicitNames[name] || e.opts.Builtins[name] || isDunder(name)
	}

	var results []types.Diagnostic
	seen := make(map[nameUse]bool)
	var candidates map[string]bool

	for _, u := range idx.uses {
		if known(u.name) || seen[u] {
			continue
		}
		seen[u] = true

		if candidates == nil {
			candidates = make(map[string]bool, len(idx.bound)+len(pythonBuiltins))
			for n := range idx.bound {
				candidates[n] = true
			}
			for n := range pythonBuiltins {
				candidates[n] = true
			}
		}

		message := fmt.Sprintf("Undefined name '%s' (check spelling, or a missing import or assignment)", u.name)
		if sug := closeMatches(u.name, candidates, 3, 0.78); len(sug) > 0 {
			message = fmt.Sprintf("Undefined name '%s'. Did you mean: %s?", u.name, strings.Join(sug, ", "))
		}
		results = append(results, createResult(message, u.line, u.name))
	}

	return results
}

// checkUnusedImports reports imported names that never reappear
func (e *Engine) checkUnusedImports(in *Input) []types.Diagnostic {
	if in.syntaxProblem() != nil {
		return nil
	}
	idx := in.nameIndex()
	var results []types.Diagnostic

	for _, imp := range idx.imports {
		if imp.future || idx.refs[imp.name] > 0 {
			continue
		}
		results = append(results, createResult(
			fmt.Sprintf("Imported name '%s' looks unused", imp.name),
			imp.line,
			imp.name,
		))
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Line < results[j].Line })
	return results
}
