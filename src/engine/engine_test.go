package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/lintconf/src/config"
	"github.com/sofmeright/lintconf/src/ruleset"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func testResolver(t *testing.T) *ruleset.Resolver {
	t.Helper()
	f := &ruleset.Fragment{
		Name:  "root",
		Env:   map[string]bool{"node": true},
		Rules: ruleset.RuleTable{"func-names": {Severity: ruleset.SeverityWarn}},
		Overrides: []ruleset.OverrideBlock{
			{Files: []string{"test/**/*.test.ts"}, Rules: ruleset.RuleTable{"func-names": {Severity: ruleset.SeverityOff}}},
			{Files: []string{"*.js"}, Env: map[string]bool{"commonjs": true}},
		},
	}
	r, err := ruleset.NewResolver(f)
	require.NoError(t, err)
	return r
}

func newTestEngine(t *testing.T, cfg config.ResolveConfig, root string) *Engine {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	e, err := NewEngine(cfg, root, testResolver(t), log)
	require.NoError(t, err)
	return e
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"src/index.ts",
		"src/util.js",
		"src/README.md",
		"test/unit/a.test.ts",
		"node_modules/lib/index.js",
		".git/config",
		".cache/x.ts",
		"dist/out.js",
	)

	cfg := config.DefaultResolveConfig()
	e := newTestEngine(t, cfg, root)

	files, err := e.CollectFiles()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.Equal(t, int64(1), f.Size)
	}
	assert.ElementsMatch(t, []string{"src/index.ts", "src/util.js", "test/unit/a.test.ts"}, paths)
}

func TestCollectFilesAllExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.md", "b.ts", "gen/c.ts")

	e := newTestEngine(t, config.ResolveConfig{Exclude: []string{"gen/**"}}, root)
	files, err := e.CollectFiles()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"a.md", "b.ts"}, paths)
}

func TestRun(t *testing.T) {
	cfg := config.DefaultResolveConfig()
	cfg.Concurrency = 2
	e := newTestEngine(t, cfg, t.TempDir())

	files := []FileInfo{
		{Path: "test/unit/b.test.ts"},
		{Path: "src/a.ts"},
		{Path: "test/unit/a.test.ts"},
		{Path: "src/b.js"},
		{Path: "node_modules/x.js"},
	}
	results, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "src/a.ts", results[0].Path)
	assert.Equal(t, "src/b.js", results[1].Path)
	assert.Equal(t, "test/unit/a.test.ts", results[2].Path)
	assert.Equal(t, "test/unit/b.test.ts", results[3].Path)

	assert.Equal(t, ruleset.SeverityWarn, results[0].Config.Rules["func-names"].Severity)
	assert.True(t, results[1].Config.Env["commonjs"])
	assert.Equal(t, ruleset.SeverityOff, results[2].Config.Rules["func-names"].Severity)

	assert.Equal(t, "", results[0].Signature)
	assert.Equal(t, "1", results[1].Signature)
	assert.Equal(t, "0", results[2].Signature)
	assert.Same(t, results[2].Config, results[3].Config)

	hits, misses := e.Cache.Stats()
	assert.Equal(t, int64(3), misses)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, 3, e.Cache.Len())
}

func TestRunWithoutCache(t *testing.T) {
	cfg := config.DefaultResolveConfig()
	cfg.CacheSize = 0
	e := newTestEngine(t, cfg, t.TempDir())
	assert.Nil(t, e.Cache)

	results, err := e.Run(context.Background(), []FileInfo{{Path: "a.ts"}, {Path: "b.ts"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotSame(t, results[0].Config, results[1].Config)
	assert.Equal(t, results[0].Config, results[1].Config)
}

func TestRunCanceled(t *testing.T) {
	e := newTestEngine(t, config.DefaultResolveConfig(), t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []FileInfo{{Path: "a.ts"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineRejectsBadExclude(t *testing.T) {
	_, err := NewEngine(config.ResolveConfig{Exclude: []string{"[oops"}}, ".", testResolver(t), nil)
	assert.ErrorContains(t, err, "exclude pattern")

	_, err = NewEngine(config.ResolveConfig{}, ".", nil, nil)
	assert.Error(t, err)
}

func TestGroupResults(t *testing.T) {
	e := newTestEngine(t, config.DefaultResolveConfig(), t.TempDir())
	results, err := e.Run(context.Background(), []FileInfo{
		{Path: "src/a.ts"},
		{Path: "src/b.ts"},
		{Path: "test/x/a.test.ts"},
		{Path: "lib/c.js"},
	})
	require.NoError(t, err)

	groups := GroupResults(results)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"lib/c.js"}, groups[0].Files)
	assert.Equal(t, []string{"root#1"}, groups[0].Applied)
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, groups[1].Files)
	assert.Empty(t, groups[1].Applied)
	assert.Equal(t, []string{"test/x/a.test.ts"}, groups[2].Files)
}

func TestCacheNil(t *testing.T) {
	var c *Cache
	calls := 0
	build := func() *ruleset.EffectiveConfig { calls++; return &ruleset.EffectiveConfig{} }
	c.Get("k", build)
	c.Get("k", build)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
	c.Purge()
}

func TestCachePurge(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	calls := 0
	build := func() *ruleset.EffectiveConfig { calls++; return &ruleset.EffectiveConfig{} }
	c.Get("a", build)
	c.Get("a", build)
	assert.Equal(t, 1, calls)

	c.Purge()
	c.Get("a", build)
	assert.Equal(t, 2, calls)

	_, err = NewCache(0)
	assert.Error(t, err)
}
