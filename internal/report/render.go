package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"linecheck/internal/types"
)

// TextOptions configures the plain-text report
type TextOptions struct {
	Color    bool
	ShowPath bool
}

var sections = []struct {
	severity types.Severity
	title    string
	attrs    []color.Attribute
}{
	{types.SeverityError, "Errors", []color.Attribute{color.FgRed, color.Bold}},
	{types.SeverityWarning, "Warnings", []color.Attribute{color.FgYellow, color.Bold}},
	{types.SeverityNote, "Notes", []color.Attribute{color.FgCyan, color.Bold}},
}

// Text writes the summary line followed by one section per non-empty
// severity group.
func Text(w io.Writer, result types.ScanResult, opts TextOptions) error {
	s := result.Summary()
	if opts.ShowPath {
		if _, err := fmt.Fprintf(w, "File: %s\n", result.Path); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Summary: %d errors, %d warnings, %d notes\n", s.Errors, s.Warnings, s.Notes); err != nil {
		return err
	}

	for _, sec := range sections {
		diags := result.BySeverity(sec.severity)
		if len(diags) == 0 {
			continue
		}
		header := color.New(sec.attrs...)
		if opts.Color {
			header.EnableColor()
		} else {
			header.DisableColor()
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if _, err := header.Fprint(w, sec.title+":"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, d := range diags {
			if _, err := fmt.Fprintf(w, "  %s\n", FormatDiagnostic(d)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatDiagnostic renders "Line <n>: <message>", or just the message for
// file-level diagnostics.
func FormatDiagnostic(d types.Diagnostic) string {
	if d.Line > 0 {
		return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
	}
	return d.Message
}

type jsonSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notes    int `json:"notes"`
}

type jsonDiagnostic struct {
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	Summary     jsonSummary      `json:"summary"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonReport struct {
	Files   []jsonFile  `json:"files"`
	Summary jsonSummary `json:"summary"`
}

// JSON renders results with per-file and total summaries
func JSON(results []types.ScanResult) ([]byte, error) {
	out := jsonReport{Files: make([]jsonFile, 0, len(results))}
	for _, r := range results {
		s := r.Summary()
		f := jsonFile{
			Path:        r.Path,
			Summary:     jsonSummary{Errors: s.Errors, Warnings: s.Warnings, Notes: s.Notes},
			Diagnostics: make([]jsonDiagnostic, 0, len(r.Diagnostics)),
		}
		for _, d := range r.Diagnostics {
			f.Diagnostics = append(f.Diagnostics, jsonDiagnostic{
				Line:     d.Line,
				Severity: d.Severity.String(),
				Rule:     d.RuleID,
				Message:  d.Message,
			})
		}
		out.Summary.Errors += s.Errors
		out.Summary.Warnings += s.Warnings
		out.Summary.Notes += s.Notes
		out.Files = append(out.Files, f)
	}
	return json.MarshalIndent(out, "", "  ")
}

// SARIF renders results as a SARIF 2.1.0 log
func SARIF(results []types.ScanResult, toolVersion string) ([]byte, error) {
	type rule struct {
		ID string `json:"id"`
	}
	type region struct {
		StartLine int `json:"startLine"`
	}
	type physicalLocation struct {
		ArtifactLocation struct {
			URI string `json:"uri"`
		} `json:"artifactLocation"`
		Region *region `json:"region,omitempty"`
	}
	type location struct {
		PhysicalLocation physicalLocation `json:"physicalLocation"`
	}
	type resultItem struct {
		RuleID    string            `json:"ruleId"`
		Level     string            `json:"level"`
		Message   map[string]string `json:"message"`
		Locations []location        `json:"locations"`
	}

	rulesByID := make(map[string]rule)
	items := make([]resultItem, 0)

	for _, r := range results {
		for _, d := range r.Diagnostics {
			rulesByID[d.RuleID] = rule{ID: d.RuleID}

			var loc location
			loc.PhysicalLocation.ArtifactLocation.URI = filepath.ToSlash(r.Path)
			if d.Line > 0 {
				loc.PhysicalLocation.Region = &region{StartLine: d.Line}
			}
			items = append(items, resultItem{
				RuleID:    d.RuleID,
				Level:     sarifLevel(d.Severity),
				Message:   map[string]string{"text": d.Message},
				Locations: []location{loc},
			})
		}
	}

	ruleList := make([]rule, 0, len(rulesByID))
	for _, r := range rulesByID {
		ruleList = append(ruleList, r)
	}
	sort.Slice(ruleList, func(i, j int) bool { return ruleList[i].ID < ruleList[j].ID })

	payload := map[string]any{
		"$schema": "https://json.schemastore.org/sarif-2.1.0.json",
		"version": "2.1.0",
		"runs": []any{
			map[string]any{
				"tool": map[string]any{
					"driver": map[string]any{
						"name":            "linecheck",
						"semanticVersion": toolVersion,
						"rules":           ruleList,
					},
				},
				"results": items,
			},
		},
	}

	return json.MarshalIndent(payload, "", "  ")
}

func sarifLevel(s types.Severity) string {
	switch s {
	case types.SeverityError:
		return "error"
	case types.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
