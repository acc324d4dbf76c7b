package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sofmeright/lintconf/src/ruleset"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Version ───────────────────────────────────────────────────────────

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("version: must be 1, got %d", cfg.Version))
	}

	// ── Fragments ─────────────────────────────────────────────────────────

	if len(cfg.Fragments) == 0 {
		errs = append(errs, "fragments: at least one fragment reference is required")
	}
	seen := make(map[string]bool, len(cfg.Fragments))
	for i, ref := range cfg.Fragments {
		if strings.TrimSpace(ref) == "" {
			errs = append(errs, fmt.Sprintf("fragments[%d]: reference is empty", i))
			continue
		}
		if seen[ref] {
			warnings = append(warnings, fmt.Sprintf("fragments[%d]: %q is listed more than once and will be merged twice", i, ref))
		}
		seen[ref] = true
	}

	// ── Sources ───────────────────────────────────────────────────────────

	warnings = append(warnings, checkDirs("presets.dirs", cfg.Presets.Dirs)...)
	warnings = append(warnings, checkDirs("plugins.dirs", cfg.Plugins.Dirs)...)

	// ── Resolve ───────────────────────────────────────────────────────────

	switch cfg.Resolve.Level {
	case LevelChanged, LevelFull:
	default:
		errs = append(errs, fmt.Sprintf("resolve.level: unknown level %q (supported: changed, full)", cfg.Resolve.Level))
	}
	for i, p := range cfg.Resolve.Exclude {
		if err := ruleset.ValidateGlob(p); err != nil {
			errs = append(errs, fmt.Sprintf("resolve.exclude[%d]: %q: %v", i, p, err))
		}
	}
	for i, ext := range cfg.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Sprintf("resolve.extensions[%d]: %q must start with a dot", i, ext))
		}
	}
	if cfg.Resolve.CacheSize < 0 {
		errs = append(errs, fmt.Sprintf("resolve.cache_size: must be >= 0, got %d", cfg.Resolve.CacheSize))
	}
	if cfg.Resolve.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("resolve.concurrency: must be >= 0, got %d", cfg.Resolve.Concurrency))
	}

	// ── Log ───────────────────────────────────────────────────────────────

	if cfg.Log.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
			errs = append(errs, fmt.Sprintf("log.level: %v", err))
		}
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format: unknown format %q (supported: text, json)", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

func checkDirs(field string, dirs []string) []string {
	var warnings []string
	for i, dir := range dirs {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s[%d]: %s does not exist and will be skipped", field, i, dir))
		case !info.IsDir():
			warnings = append(warnings, fmt.Sprintf("%s[%d]: %s is not a directory and will be skipped", field, i, dir))
		}
	}
	return warnings
}
