// Package engine resolves effective configurations for every file in a
// workspace.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/lintconf/src/config"
	"github.com/sofmeright/lintconf/src/ruleset"
)

// FileInfo describes one file in the workspace.
type FileInfo struct {
	Path    string // relative to RootDir, slash-separated
	AbsPath string
	Size    int64
}

// FileResult is the effective config of one file. Config may be shared
// with other results of the same Signature and must not be modified.
type FileResult struct {
	Path      string
	Signature string
	Config    *ruleset.EffectiveConfig
}

// Engine resolves workspace files against one Resolver.
type Engine struct {
	Config   config.ResolveConfig
	RootDir  string
	Resolver *ruleset.Resolver
	Cache    *Cache

	log *logrus.Logger
}

// NewEngine creates an engine. A nil log defaults to logrus.New().
func NewEngine(cfg config.ResolveConfig, rootDir string, resolver *ruleset.Resolver, log *logrus.Logger) (*Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("engine: nil resolver")
	}
	if log == nil {
		log = logrus.New()
	}
	for _, p := range cfg.Exclude {
		if err := ruleset.ValidateGlob(p); err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}

	e := &Engine{
		Config:   cfg,
		RootDir:  rootDir,
		Resolver: resolver,
		log:      log,
	}
	if cfg.CacheSize > 0 {
		cache, err := NewCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		e.Cache = cache
	}
	return e, nil
}

// Resolve returns the effective config of a single path.
func (e *Engine) Resolve(path string) FileResult {
	path = ruleset.NormalizePath(path)
	matched := e.Resolver.Match(path)
	sig := ruleset.Signature(matched)
	cfg := e.Cache.Get(sig, func() *ruleset.EffectiveConfig {
		return e.Resolver.Apply(matched)
	})
	return FileResult{Path: path, Signature: sig, Config: cfg}
}

// Run resolves every file concurrently and returns the results sorted by
// path. Excluded files are skipped.
func (e *Engine) Run(ctx context.Context, files []FileInfo) ([]FileResult, error) {
	limit := e.Config.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU() * 2
	}

	var queued []FileInfo
	for _, f := range files {
		if !e.isExcluded(f.Path) {
			queued = append(queued, f)
		}
	}

	results := make([]FileResult, len(queued))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range queued {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Resolve(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Path < results[b].Path })

	hits, misses := e.Cache.Stats()
	e.log.Debugf("resolved %d files (%d cached, %d built)", len(results), hits, misses)
	return results, nil
}

// CollectFiles walks the root directory and returns every regular file
// that is not hidden, not excluded and, when extensions are configured,
// carries one of them.
func (e *Engine) CollectFiles() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(e.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(e.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || e.isExcluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !e.hasExtension(rel) || e.isExcluded(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path:    rel,
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})

	return files, err
}

func (e *Engine) hasExtension(path string) bool {
	if len(e.Config.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range e.Config.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// isExcluded applies the exclude patterns with override-pattern semantics:
// patterns containing "/" or "**" match the full path, others the base name.
func (e *Engine) isExcluded(path string) bool {
	if len(e.Config.Exclude) == 0 {
		return false
	}
	norm := ruleset.NormalizePath(path)
	for _, pattern := range e.Config.Exclude {
		if ruleset.MatchFilePattern(pattern, norm) {
			return true
		}
	}
	return false
}
