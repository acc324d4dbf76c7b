package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/lintconf/src/engine"
	"github.com/sofmeright/lintconf/src/ruleset"
)

func sampleConfig() *ruleset.EffectiveConfig {
	return &ruleset.EffectiveConfig{
		Env:           map[string]bool{"node": true, "mocha": true, "browser": false},
		Parser:        "@typescript-eslint/parser",
		ParserOptions: map[string]any{"sourceType": "module"},
		Plugins:       []string{"@typescript-eslint", "mocha"},
		Rules: ruleset.RuleTable{
			"func-names":                 {Severity: ruleset.SeverityOff},
			"mocha/max-top-level-suites": {Severity: ruleset.SeverityError, Options: []any{map[string]any{"limit": 1}}},
			"no-undefined":               {Severity: ruleset.SeverityWarn},
		},
		Applied: []string{"mocha#0"},
	}
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintConfig("test/a.test.ts", sampleConfig())

	out := buf.String()
	assert.Contains(t, out, "test/a.test.ts\n")
	assert.Contains(t, out, "parser        @typescript-eslint/parser")
	assert.Contains(t, out, "env           mocha, node\n")
	assert.Contains(t, out, "overrides     mocha#0")
	assert.Contains(t, out, `ERR  mocha/max-top-level-suites [{"limit":1}]`)
	assert.Contains(t, out, "OFF  func-names\n")
	assert.Contains(t, out, "3 rules: 1 error, 1 warn, 1 off")

	// Rules print in name order.
	assert.Less(t, strings.Index(out, "func-names"), strings.Index(out, "no-undefined"))
	assert.NotContains(t, out, "\033[")
}

func TestPrintConfigColor(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf, Color: true}
	p.PrintConfig("a.ts", sampleConfig())
	assert.Contains(t, buf.String(), colorRed+"ERR "+colorReset)
}

func TestRulesSummaryLine(t *testing.T) {
	assert.Equal(t, "0 rules: no rules", RulesSummaryLine(0, 0, 0, false))
	assert.Equal(t, "5 rules: 2 warn, 3 off", RulesSummaryLine(3, 2, 0, false))
}

func TestEncode(t *testing.T) {
	cfg := sampleConfig()

	var js bytes.Buffer
	require.NoError(t, Encode(&js, FormatJSON, cfg))
	assert.JSONEq(t, `{
		"env": {"browser": false, "mocha": true, "node": true},
		"parser": "@typescript-eslint/parser",
		"parserOptions": {"sourceType": "module"},
		"plugins": ["@typescript-eslint", "mocha"],
		"rules": {
			"func-names": "off",
			"mocha/max-top-level-suites": ["error", {"limit": 1}],
			"no-undefined": "warn"
		}
	}`, js.String())

	var y bytes.Buffer
	require.NoError(t, Encode(&y, FormatYAML, cfg))
	assert.Contains(t, y.String(), "parser: '@typescript-eslint/parser'\n")
	assert.Contains(t, y.String(), "  func-names: \"off\"\n")
	assert.Contains(t, y.String(), "  mocha/max-top-level-suites:\n    - error\n    - limit: 1\n")

	assert.Error(t, Encode(&y, FormatText, cfg))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, "json": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestGroupTableAndSection(t *testing.T) {
	cfg := sampleConfig()
	groups := []engine.Group{
		{Signature: "", Files: []string{"src/a.ts", "src/b.ts"}, Config: &ruleset.EffectiveConfig{Rules: ruleset.RuleTable{}}},
		{Signature: "0", Applied: cfg.Applied, Files: []string{"test/a.test.ts"}, Config: cfg},
	}

	var buf bytes.Buffer
	GroupTable(&buf, groups)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "overrides")
	assert.Contains(t, lines[1], "-")
	assert.Contains(t, lines[2], "mocha#0")

	buf.Reset()
	sec := NewSection(&buf, "Groups", 1500*time.Millisecond, false)
	SectionGroups(sec, groups, false)
	sec.Close()
	out := buf.String()
	assert.Contains(t, out, "── Groups ")
	assert.Contains(t, out, " 1.5s ──")
	assert.Contains(t, out, "    │ base\n")
	assert.Contains(t, out, "    │   src/b.ts\n")
	assert.Contains(t, out, "    │ mocha#0\n")
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "<1ms", formatElapsed(0))
	assert.Equal(t, "250ms", formatElapsed(250*time.Millisecond))
	assert.Equal(t, "2m5.0s", formatElapsed(125*time.Second))
}

func TestStatusRow(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Validate", 0, false)
	sec.StatusRow(StatusOK, "config")
	sec.StatusRow(StatusWarn, "%d unknown", 2)
	sec.StatusRow(StatusFailed, "fragments")
	sec.Close()

	out := buf.String()
	assert.Contains(t, out, "── Validate ")
	assert.Contains(t, out, "    │ ✓ config\n")
	assert.Contains(t, out, "    │ ⊘ 2 unknown\n")
	assert.Contains(t, out, "    │ ✗ fragments\n")
	assert.Contains(t, out, "    └")

	assert.Equal(t, "\033[32m✓\033[0m", StatusOK.Icon(true))
}

func TestSectionStartGitHub(t *testing.T) {
	t.Setenv("GITLAB_CI", "")
	t.Setenv("GITHUB_ACTIONS", "true")

	var buf bytes.Buffer
	SectionStart(&buf, "lc_files", "Files")
	SectionEnd(&buf, "lc_files")
	assert.Equal(t, "::group::Files\n::endgroup::\n", buf.String())
}
