package rules

import (
	"fmt"
	"sort"
	"strings"

	"linecheck/internal/config"
	"linecheck/internal/secrets"
	"linecheck/internal/source"
	"linecheck/internal/types"
)

// Rule IDs, in registration order
const (
	TrailingWhitespaceID = "TRAILING_WHITESPACE"
	LongLineID           = "LONG_LINE"
	TodoFixmeID          = "TODO_FIXME"
	MixedIndentID        = "MIXED_INDENT"
	InconsistentIndentID = "INCONSISTENT_INDENT"
	SyntaxErrorID        = "SYNTAX_ERROR"
	SyntaxContextID      = "SYNTAX_CONTEXT"
	UndefinedNameID      = "UNDEFINED_NAME"
	UnusedImportID       = "UNUSED_IMPORT"
	HardcodedSecretID    = "HARDCODED_SECRET"
)

// Engine manages and executes the registered rules
type Engine struct {
	rules []Rule
	opts  Options
}

// Options tune individual checks
type Options struct {
	MaxLineLength int
	LengthMode    string
	Builtins      map[string]bool
}

// Rule defines a single check
type Rule struct {
	ID          string
	Description string
	Severity    types.Severity
	Disabled    bool
	Check       func(*Input) []types.Diagnostic
}

// Input is what a rule sees: the file plus lazily computed token data
type Input struct {
	File *source.File

	tokens   []source.Token
	problems []source.Problem
	lexed    bool
	names    *nameIndex
}

// NewInput wraps a parsed file for checking
func NewInput(f *source.File) *Input {
	return &Input{File: f}
}

// Tokens returns the lexed file, lexing on first use
func (in *Input) Tokens() []source.Token {
	in.lex()
	return in.tokens
}

// syntaxProblem returns the first lexical problem, or nil
func (in *Input) syntaxProblem() *source.Problem {
	in.lex()
	if len(in.problems) == 0 {
		return nil
	}
	return &in.problems[0]
}

func (in *Input) lex() {
	if !in.lexed {
		in.tokens, in.problems = in.File.Tokens()
		in.lexed = true
	}
}

// NewEngine creates a new rule engine with default rules
func NewEngine() *Engine {
	engine := &Engine{
		rules: []Rule{},
		opts: Options{
			MaxLineLength: config.DefaultMaxLineLength,
			LengthMode:    config.LengthRunes,
			Builtins:      map[string]bool{},
		},
	}

	engine.registerDefaultRules()

	return engine
}

// registerDefaultRules registers built-in rules. Order matters: it is the
// tie-breaker when diagnostics share a line and severity.
func (e *Engine) registerDefaultRules() {
	e.registerRule(TrailingWhitespaceID, "Lines should not end with whitespace", types.SeverityWarning, e.checkTrailingWhitespace)
	e.registerRule(LongLineID, "Lines should not exceed the configured length", types.SeverityWarning, e.checkLongLines)
	e.registerRule(TodoFixmeID, "TODO and FIXME markers are reported", types.SeverityNote, e.checkTodoFixme)
	e.registerRule(MixedIndentID, "A line must not mix tabs and spaces in its layout whitespace", types.SeverityError, e.checkMixedIndent)
	e.registerRule(InconsistentIndentID, "A file should indent with either tabs or spaces", types.SeverityWarning, e.checkInconsistentIndent)
	e.registerRule(SyntaxErrorID, "Strings must be terminated and brackets balanced", types.SeverityError, e.checkSyntax)
	e.registerRule(SyntaxContextID, "Quotes the line a syntax error points at", types.SeverityNote, e.checkSyntaxContext)
	e.registerRule(UndefinedNameID, "Names should be bound before use (heuristic)", types.SeverityWarning, e.checkUndefinedNames)
	e.registerRule(UnusedImportID, "Imported names should be used (heuristic)", types.SeverityWarning, e.checkUnusedImports)

	secretScan := secrets.NewScanner()
	e.registerRule(HardcodedSecretID, "Credentials should not be hardcoded", types.SeverityWarning, func(in *Input) []types.Diagnostic {
		return secretScan.Scan(in.File)
	})
	// opt-in: enable with rules.HARDCODED_SECRET.enabled
	e.rules[len(e.rules)-1].Disabled = true
}

// registerRule is a helper to register rules
func (e *Engine) registerRule(id, description string, severity types.Severity, checkFunc func(*Input) []types.Diagnostic) {
	e.rules = append(e.rules, Rule{
		ID:          id,
		Description: description,
		Severity:    severity,
		Check:       checkFunc,
	})
}

// Rules returns a copy of the registered rules
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Check runs all enabled rules against the file and returns the
// diagnostics sorted by line and severity.
func (e *Engine) Check(f *source.File) []types.Diagnostic {
	in := NewInput(f)
	var results []types.Diagnostic

	for _, rule := range e.rules {
		if rule.Disabled {
			continue
		}
		ruleResults := rule.Check(in)
		for i := range ruleResults {
			ruleResults[i].RuleID = rule.ID
			ruleResults[i].Severity = rule.Severity
		}
		results = append(results, ruleResults...)
	}

	types.SortDiagnostics(results)
	return results
}

// ApplyConfig applies configuration to the rules and options.
// Unknown rule IDs are rejected.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	if cfg.MaxLineLength > 0 {
		e.opts.MaxLineLength = cfg.MaxLineLength
	}
	if cfg.LengthMode != "" {
		e.opts.LengthMode = cfg.LengthMode
	}
	for _, name := range cfg.Builtins {
		e.opts.Builtins[strings.TrimSpace(name)] = true
	}

	known := make(map[string]bool, len(e.rules))
	for i := range e.rules {
		rule := &e.rules[i]
		known[rule.ID] = true
		ruleConfig, ok := cfg.Rules[rule.ID]
		if !ok {
			continue
		}
		if ruleConfig.Enabled {
			rule.Disabled = false
		}
		if ruleConfig.Disabled {
			rule.Disabled = true
		}
		if ruleConfig.Severity != "" {
			sev, err := types.ParseSeverity(ruleConfig.Severity)
			if err != nil {
				return fmt.Errorf("rule %s: %w", rule.ID, err)
			}
			rule.Severity = sev
		}
	}

	var unknown []string
	for id := range cfg.Rules {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown rule(s) in config: %s", strings.Join(unknown, ", "))
	}

	return nil
}
