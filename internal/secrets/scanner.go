package secrets

import (
	"fmt"
	"regexp"

	"linecheck/internal/source"
	"linecheck/internal/types"
)

// Scanner detects hardcoded credentials in source lines
type Scanner struct {
	patterns []SecretPattern
}

// SecretPattern defines a pattern to detect secrets
type SecretPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// NewScanner creates a new secret scanner
func NewScanner() *Scanner {
	scanner := &Scanner{
		patterns: []SecretPattern{},
	}

	scanner.registerPatterns()

	return scanner
}

// Scan reports at most one diagnostic per line, naming the first pattern
// that matches. Severity and rule ID are left to the caller.
func (s *Scanner) Scan(f *source.File) []types.Diagnostic {
	var results []types.Diagnostic

	for _, line := range f.Lines {
		for _, pattern := range s.patterns {
			if pattern.Pattern.MatchString(line.Text) {
				results = append(results, types.Diagnostic{
					Message: fmt.Sprintf("Potential hardcoded %s", pattern.Name),
					Line:    line.Number,
					Context: line.Text,
				})
				break
			}
		}
	}

	return results
}

// registerPatterns registers common secret patterns
func (s *Scanner) registerPatterns() {
	// AWS Access Key
	s.patterns = append(s.patterns, SecretPattern{
		Name:    "AWS access key",
		Pattern: regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	})

	// Generic API key assignment
	s.patterns = append(s.patterns, SecretPattern{
		Name:    "API key",
		Pattern: regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*['"][a-zA-Z0-9_\-]{20,}['"]`),
	})

	// Private key block
	s.patterns = append(s.patterns, SecretPattern{
		Name:    "private key",
		Pattern: regexp.MustCompile(`-----BEGIN\s+(RSA\s+|DSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	})

	// Password assigned a string literal
	s.patterns = append(s.patterns, SecretPattern{
		Name:    "password",
		Pattern: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"][^'"\s]+['"]`),
	})
}
