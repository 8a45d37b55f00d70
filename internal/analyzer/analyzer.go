package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"linecheck/internal/config"
	"linecheck/internal/rules"
	"linecheck/internal/source"
	"linecheck/internal/types"
)

// ReadErrorID is the rule ID of the diagnostic reported for unreadable files
const ReadErrorID = "READ_ERROR"

// maxParallel bounds concurrent file scans in AnalyzeAll
const maxParallel = 8

// Analyzer scans source files with a configured rule engine
type Analyzer struct {
	ruleEngine *rules.Engine
	logger     *slog.Logger
}

// NewAnalyzer creates a new analyzer instance. A nil cfg means defaults.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := rules.NewEngine()
	if err := engine.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	return &Analyzer{
		ruleEngine: engine,
		logger:     logger,
	}, nil
}

// Analyze reads the file once and scans it. A file that cannot be read
// yields a single file-level error and no further checks.
func (a *Analyzer) Analyze(filePath string) types.ScanResult {
	data, err := os.ReadFile(filePath)
	if err != nil {
		a.logger.Debug("read failed", "path", filePath, "error", err)
		return readError(filePath, err)
	}
	return a.AnalyzeBytes(filePath, data)
}

// AnalyzeBytes scans file contents already in memory. It is a pure function
// of its inputs and the analyzer configuration.
func (a *Analyzer) AnalyzeBytes(filePath string, data []byte) types.ScanResult {
	f, err := source.Parse(filePath, data)
	if err != nil {
		return readError(filePath, err)
	}

	result := types.ScanResult{
		Path:        filePath,
		Diagnostics: a.ruleEngine.Check(f),
	}
	s := result.Summary()
	a.logger.Debug("scanned file",
		"path", filePath,
		"lines", len(f.Lines),
		"errors", s.Errors,
		"warnings", s.Warnings,
		"notes", s.Notes,
	)
	return result
}

// AnalyzeAll scans several files concurrently and returns their results in
// input order. Each file is still scanned sequentially on its own.
func (a *Analyzer) AnalyzeAll(ctx context.Context, paths []string) ([]types.ScanResult, error) {
	results := make([]types.ScanResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func readError(filePath string, err error) types.ScanResult {
	message := fmt.Sprintf("Cannot read file %s: %v", filePath, err)
	if os.IsNotExist(err) {
		message = fmt.Sprintf("File not found: %s", filePath)
	}
	return types.ScanResult{
		Path: filePath,
		Diagnostics: []types.Diagnostic{{
			Severity: types.SeverityError,
			RuleID:   ReadErrorID,
			Message:  message,
		}},
	}
}
