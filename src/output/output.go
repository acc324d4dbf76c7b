package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sofmeright/lintconf/src/engine"
	"github.com/sofmeright/lintconf/src/ruleset"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Printer formats and writes effective configurations.
type Printer struct {
	Writer io.Writer
	Color  bool
}

// NewPrinter creates a printer writing to stdout with color auto-detection.
func NewPrinter() *Printer {
	return &Printer{
		Writer: os.Stdout,
		Color:  UseColor(),
	}
}

// PrintConfig renders the effective config of one path as text.
func (p *Printer) PrintConfig(path string, cfg *ruleset.EffectiveConfig) {
	fmt.Fprintf(p.Writer, "\n%s\n", p.colorize(path, colorBold))

	if cfg.Parser != "" {
		fmt.Fprintf(p.Writer, "  %-14s%s\n", "parser", cfg.Parser)
	}
	fmt.Fprintf(p.Writer, "  %-14s%s\n", "env", envList(cfg.Env))
	fmt.Fprintf(p.Writer, "  %-14s%s\n", "plugins", listOrNone(cfg.Plugins))
	if len(cfg.ParserOptions) > 0 {
		fmt.Fprintf(p.Writer, "  %-14s%s\n", "parserOptions", compactJSON(cfg.ParserOptions))
	}
	fmt.Fprintf(p.Writer, "  %-14s%s\n", "overrides", p.colorize(listOrNone(cfg.Applied), colorCyan))

	fmt.Fprintln(p.Writer)
	for _, name := range cfg.Rules.Names() {
		rs := cfg.Rules[name]
		line := fmt.Sprintf("  %s %s", severityTag(rs.Severity, p.Color), name)
		if len(rs.Options) > 0 {
			line += " " + p.colorize(compactJSON(rs.Options), colorGray)
		}
		fmt.Fprintln(p.Writer, line)
	}

	off, warn, errs := cfg.Rules.Count()
	fmt.Fprintf(p.Writer, "\n%s\n", RulesSummaryLine(off, warn, errs, p.Color))
}

// RulesSummaryLine returns a one-line rule count summary, optionally colored.
func RulesSummaryLine(off, warn, errs int, color bool) string {
	var parts []string
	if errs > 0 {
		s := fmt.Sprintf("%d error", errs)
		if color {
			s = colorRed + s + colorReset
		}
		parts = append(parts, s)
	}
	if warn > 0 {
		s := fmt.Sprintf("%d warn", warn)
		if color {
			s = colorYellow + s + colorReset
		}
		parts = append(parts, s)
	}
	if off > 0 {
		parts = append(parts, fmt.Sprintf("%d off", off))
	}

	summary := "no rules"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}

	totalStr := fmt.Sprintf("%d", off+warn+errs)
	if color {
		totalStr = colorBold + totalStr + colorReset
	}
	return fmt.Sprintf("%s rules: %s", totalStr, summary)
}

// severityTag returns a fixed-width severity label, optionally colored.
func severityTag(s ruleset.Severity, color bool) string {
	switch s {
	case ruleset.SeverityError:
		if color {
			return colorRed + "ERR " + colorReset
		}
		return "ERR "
	case ruleset.SeverityWarn:
		if color {
			return colorYellow + "WARN" + colorReset
		}
		return "WARN"
	case ruleset.SeverityOff:
		if color {
			return colorGray + "OFF " + colorReset
		}
		return "OFF "
	default:
		return s.String()
	}
}

func (p *Printer) colorize(text, color string) string {
	if !p.Color {
		return text
	}
	return color + text + colorReset
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// GroupTable writes one row per config group inside a section.
func GroupTable(w io.Writer, groups []engine.Group) {
	fmt.Fprintf(w, "    │ %-28s%6s  %5s  %5s  %5s\n", "overrides", "files", "error", "warn", "off")

	for _, g := range groups {
		off, warn, errs := g.Config.Rules.Count()
		fmt.Fprintf(w, "    │ %-28s%5d   %5d  %5d  %5d\n", truncate(listOrNone(g.Applied), 28), len(g.Files), errs, warn, off)
	}
}

// SectionGroups lists the files of each group inside a section.
func SectionGroups(sec *Section, groups []engine.Group, color bool) {
	for _, g := range groups {
		sec.Row("")
		label := "base"
		if len(g.Applied) > 0 {
			label = strings.Join(g.Applied, " + ")
		}
		if color {
			sec.Row("%s", colorBold+label+colorReset)
		} else {
			sec.Row("%s", label)
		}
		for _, f := range g.Files {
			sec.Row("  %s", f)
		}
	}
}

func envList(env map[string]bool) string {
	var names []string
	for name, on := range env {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return listOrNone(names)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
