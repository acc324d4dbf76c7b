package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/lintconf/src/config"
	"github.com/sofmeright/lintconf/src/engine"
	"github.com/sofmeright/lintconf/src/output"
	"github.com/sofmeright/lintconf/src/ruleset"
)

var (
	filesLevel     string
	filesAll       bool
	filesGroup     bool
	filesFormat    string
	filesFragments []string
)

var filesCmd = &cobra.Command{
	Use:   "files [root]",
	Short: "Resolve every file in a workspace",
	Long: `Walk a workspace and resolve the effective config of every file.

Files that match the same override blocks share one config; the table
shows one row per distinct config. Use --group to list the files of each.

By default the level comes from config (full). Use --level changed to
resolve only files changed against the target branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFiles,
}

// fileEntry is the encoded form of one resolved file.
type fileEntry struct {
	Path      string                   `json:"path" yaml:"path"`
	Overrides []string                 `json:"overrides" yaml:"overrides"`
	Config    *ruleset.EffectiveConfig `json:"config" yaml:"config"`
}

func init() {
	filesCmd.Flags().StringVar(&filesLevel, "level", "", "resolve level: changed or full (default: from config, then full)")
	filesCmd.Flags().BoolVar(&filesAll, "all", false, "resolve all files (shorthand for --level full)")
	filesCmd.Flags().BoolVar(&filesGroup, "group", false, "list the files of each config group")
	filesCmd.Flags().StringVarP(&filesFormat, "format", "f", "text", "output format: text, json or yaml")
	filesCmd.Flags().StringSliceVar(&filesFragments, "fragment", nil, "fragment references (default: from config)")

	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(filesFormat)
	if err != nil {
		return err
	}

	level := filesLevel
	if filesAll {
		level = string(config.LevelFull)
	}
	// CLI flag > config > default "full"
	if level == "" && cfg.Resolve.Level != "" {
		level = string(cfg.Resolve.Level)
	}
	if level == "" {
		level = string(config.LevelFull)
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	resolver, err := buildResolver(newLoader(), fragmentRefs(filesFragments))
	if err != nil {
		return err
	}
	eng, err := engine.NewEngine(cfg.Resolve, rootDir, resolver, log)
	if err != nil {
		return err
	}

	files, err := eng.CollectFiles()
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}

	ctx := context.Background()

	// Delta filtering: only resolve changed files unless --level full
	if level != string(config.LevelFull) {
		delta := &engine.Delta{RootDir: rootDir, TargetBranch: cfg.Resolve.TargetBranch, Log: log}
		changedSet, deltaErr := delta.ChangedFiles(ctx)
		if deltaErr != nil {
			log.Debugf("delta: %v, falling back to full resolve", deltaErr)
		}
		if changedSet != nil {
			allFiles := files
			files = engine.FilterByDelta(files, changedSet)
			log.Debugf("delta: %d/%d files changed", len(files), len(allFiles))
		}
	}

	log.Debugf("resolving %d files", len(files))

	start := time.Now()
	results, err := eng.Run(ctx, files)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := cmd.OutOrStdout()
	if format != output.FormatText {
		entries := make([]fileEntry, len(results))
		for i, r := range results {
			entries[i] = fileEntry{Path: r.Path, Overrides: r.Config.Applied, Config: r.Config}
		}
		return output.Encode(w, format, entries)
	}

	groups := engine.GroupResults(results)
	color := output.UseColor()

	// ── Files section ──
	output.SectionStart(w, "lc_files", "Files")
	sec := output.NewSection(w, "Files", elapsed, color)
	output.GroupTable(w, groups)
	sec.Separator()
	sec.Row("%d files, %d distinct configs, %d override blocks",
		len(results), len(groups), len(resolver.Overrides()))
	sec.Close()
	output.SectionEnd(w, "lc_files")

	// ── Groups section ──
	if filesGroup && len(groups) > 0 {
		output.SectionStart(w, "lc_groups", "Groups")
		gSec := output.NewSection(w, "Groups", 0, color)
		output.SectionGroups(gSec, groups, color)
		gSec.Close()
		output.SectionEnd(w, "lc_groups")
	}

	if eng.Cache != nil {
		hits, misses := eng.Cache.Stats()
		log.Debugf("cache: %d hits, %d misses", hits, misses)
	}
	return nil
}
