package ruleset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Load reads a ruleset from path. The path may be a single JSON file or a
// directory, in which case the rules of every .json file are concatenated
// into one ruleset (the version and metadata of the first document win).
func Load(path string) (*Ruleset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat ruleset path %q: %w", path, err)
	}

	if !info.IsDir() {
		return loadFile(path)
	}
	return loadDirectory(path)
}

func loadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file %q: %w", path, err)
	}
	return Parse(data, path)
}

func loadDirectory(dir string) (*Ruleset, error) {
	logger := slog.Default().With("component", "waf.ruleset")

	var merged *Ruleset

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		rs, err := loadFile(path)
		if err != nil {
			return err
		}

		if merged == nil {
			merged = rs
		} else {
			merged.Rules = append(merged.Rules, rs.Rules...)
		}

		logger.Debug("loaded ruleset file",
			"path", path,
			"rule_count", len(rs.Rules),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk ruleset directory %q: %w", dir, err)
	}

	if merged == nil {
		return nil, fmt.Errorf("no ruleset files found under %q", dir)
	}

	// Re-check cross-file invariants (duplicate rule ids across files).
	if err := merged.validate(); err != nil {
		return nil, &ParseError{Source: dir, Cause: err}
	}

	logger.Info("loaded ruleset",
		"path", dir,
		"rule_count", len(merged.Rules),
	)

	return merged, nil
}
