package types

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a diagnostic
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	}
	return "unknown"
}

// ParseSeverity converts a config value ("error", "warning", "note") to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "note", "info":
		return SeverityNote, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Diagnostic represents a single reported issue.
// Line is 1-based; 0 means the diagnostic applies to the whole file.
type Diagnostic struct {
	Severity Severity
	RuleID   string
	Message  string
	Line     int
	Context  string
}

// ScanResult is the outcome of scanning one file
type ScanResult struct {
	Path        string
	Diagnostics []Diagnostic
}

// Summary holds per-severity counts
type Summary struct {
	Errors   int
	Warnings int
	Notes    int
}

// Summary counts the diagnostics of each severity
func (r ScanResult) Summary() Summary {
	var s Summary
	for _, d := range r.Diagnostics {
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityNote:
			s.Notes++
		}
	}
	return s
}

// BySeverity returns the diagnostics of one severity, in result order
func (r ScanResult) BySeverity(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any diagnostic is an error
func (r ScanResult) HasErrors() bool {
	return r.Summary().Errors > 0
}

// SortDiagnostics orders diagnostics by line (file-level first), then by
// severity (errors first). Ties keep their original order.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Severity > diags[j].Severity
	})
}
