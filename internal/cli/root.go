package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"linecheck/internal/analyzer"
	"linecheck/internal/config"
	"linecheck/internal/report"
	"linecheck/internal/types"
)

// Version is reported by --version and in SARIF output
var Version = "0.1.0"

// ErrScanFailed is returned when at least one file could not be read.
// Its diagnostics have already been printed.
var ErrScanFailed = errors.New("one or more files could not be read")

// NewRootCommand creates and returns the root cobra command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linecheck [file...]",
		Short: "Line-based checks for Python source files",
		Long: `linecheck reads source files and reports trailing whitespace, long lines,
TODO/FIXME markers, mixed indentation, undefined names and unused imports,
grouped into errors, warnings and notes.

Undefined names and unused imports are best-effort heuristics, not the
result of a full parse. When no file is given, linecheck asks for one.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheck,
	}

	cmd.Flags().StringP("config", "c", os.Getenv(config.EnvConfigPath), "Path to configuration file (YAML or TOML)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text|json|sarif")
	cmd.Flags().Int("max-line-length", 0, "Override the long-line threshold")
	cmd.Flags().String("color", "auto", "Colorize output: auto|always|never")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	outputFormat, _ := cmd.Flags().GetString("format")
	maxLen, _ := cmd.Flags().GetInt("max-line-length")
	colorMode, _ := cmd.Flags().GetString("color")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	paths := args
	if len(paths) == 0 {
		path, err := promptFilename(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		paths = []string{path}
	}

	cfg, err := loadConfig(configPath, paths[0], logger)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-line-length") {
		cfg.MaxLineLength = maxLen
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a, err := analyzer.NewAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	results, err := a.AnalyzeAll(cmd.Context(), paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	useColor, err := resolveColor(colorMode, out)
	if err != nil {
		return err
	}
	if err := render(out, results, outputFormat, useColor); err != nil {
		return err
	}

	for _, r := range results {
		for _, d := range r.Diagnostics {
			if d.RuleID == analyzer.ReadErrorID {
				return ErrScanFailed
			}
		}
	}
	return nil
}

// promptFilename asks for a single filename on the given streams
func promptFilename(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter filename to check: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read filename: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("no filename given")
	}
	return name, nil
}

// loadConfig uses the explicit path if set, otherwise the nearest config
// file above the first scanned file.
func loadConfig(configPath, firstFile string, logger *slog.Logger) (*config.Config, error) {
	if configPath == "" {
		found, err := config.Discover(filepath.Dir(firstFile))
		if err != nil {
			return nil, err
		}
		configPath = found
	}
	if configPath != "" {
		logger.Debug("using config", "path", configPath)
	}
	return config.LoadConfig(configPath)
}

func resolveColor(mode string, out io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always", "on":
		return true, nil
	case "never", "off":
		return false, nil
	case "auto", "":
		if color.NoColor {
			return false, nil
		}
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid color mode: %s", mode)
}

func render(out io.Writer, results []types.ScanResult, outputFormat string, useColor bool) error {
	var payload []byte
	var err error

	switch strings.ToLower(strings.TrimSpace(outputFormat)) {
	case "text", "":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			opts := report.TextOptions{Color: useColor, ShowPath: len(results) > 1}
			if err := report.Text(out, r, opts); err != nil {
				return err
			}
		}
		return nil
	case "json":
		payload, err = report.JSON(results)
	case "sarif":
		payload, err = report.SARIF(results, Version)
	default:
		return fmt.Errorf("invalid format: %s", outputFormat)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(payload))
	return err
}
