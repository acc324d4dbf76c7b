package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, LevelFull, cfg.Resolve.Level)
	assert.Equal(t, 256, cfg.Resolve.CacheSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".lintconf.yml")
	require.NoError(t, os.WriteFile(p, []byte(`
version: 1
fragments: [base, ./.eslintrc.local.yaml]
plugins:
  dirs: [node_modules/.lintconf]
resolve:
  level: changed
  exclude: ["vendor/**"]
  concurrency: 4
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "./.eslintrc.local.yaml"}, cfg.Fragments)
	assert.Equal(t, []string{"node_modules/.lintconf"}, cfg.Plugins.Dirs)
	assert.Equal(t, LevelChanged, cfg.Resolve.Level)
	assert.Equal(t, []string{"vendor/**"}, cfg.Resolve.Exclude)
	assert.Equal(t, 4, cfg.Resolve.Concurrency)
	assert.Equal(t, 256, cfg.Resolve.CacheSize, "unset keys keep defaults")
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".lintconf.yml")
	require.NoError(t, os.WriteFile(p, []byte("version: 1\nlint:\n  level: full\n"), 0o644))

	_, err := Load(p)
	assert.ErrorContains(t, err, "lint")
}

func TestLoadEmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".lintconf.yml")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
}

func TestValidate(t *testing.T) {
	warnings, err := Validate(defaults())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	cfg := defaults()
	cfg.Version = 2
	cfg.Fragments = []string{"base", "", "base"}
	cfg.Resolve.Level = "partial"
	cfg.Resolve.Exclude = []string{"src/[.ts"}
	cfg.Resolve.Extensions = []string{"ts"}
	cfg.Resolve.CacheSize = -1
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Plugins.Dirs = []string{filepath.Join(t.TempDir(), "missing")}

	warnings, err = Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{
		"version: must be 1",
		"fragments[1]: reference is empty",
		`resolve.level: unknown level "partial"`,
		"resolve.exclude[0]",
		`resolve.extensions[0]: "ts"`,
		"resolve.cache_size",
		"log.level",
		`log.format: unknown format "xml"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "listed more than once")
	assert.Contains(t, warnings[1], "plugins.dirs[0]")
}

func TestSourcesFSSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("rules: {}"), 0o644))

	s := SourcesConfig{Dirs: []string{filepath.Join(dir, "missing"), dir}}
	fsys := s.FS()
	require.Len(t, fsys, 1)
}

func TestMigrateToLatest(t *testing.T) {
	in := []byte("version: 1\nfragments: [base]\n")
	out, err := MigrateToLatest(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = MigrateToLatest([]byte("fragments: [base]\n"))
	assert.ErrorContains(t, err, "no version field")

	_, err = MigrateToLatest([]byte("version: 9\n"))
	assert.ErrorContains(t, err, "unknown config version 9")

	_, err = MigrateToLatest([]byte("version: [\n"))
	assert.ErrorContains(t, err, "reading version")
}

func TestLogConfigNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Warn("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	log, err = LogConfig{Level: "error"}.NewLogger(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	_, err = LogConfig{Format: "xml"}.NewLogger(&buf, false)
	assert.Error(t, err)
	_, err = LogConfig{Level: "loud"}.NewLogger(&buf, false)
	assert.Error(t, err)
}
