package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sofmeright/lintconf/src/output"
	"github.com/sofmeright/lintconf/src/ruleset"
)

var (
	resolveFormat    string
	resolveFragments []string
	resolveWatch     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Print the effective config for a file",
	Long: `Resolve the configured fragments for one target path and print the
effective config: env, parser, parser options, plugins and rules.

The path is matched against override patterns as given, relative to the
directory the fragments are written against.

With --watch, every fragment file on disk is watched and the config is
printed again whenever one of them changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", "text", "output format: text, json or yaml")
	resolveCmd.Flags().StringSliceVar(&resolveFragments, "fragment", nil, "fragment references (default: from config)")
	resolveCmd.Flags().BoolVarP(&resolveWatch, "watch", "w", false, "re-resolve when a fragment file changes")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(resolveFormat)
	if err != nil {
		return err
	}
	target, err := relativeTarget(args[0])
	if err != nil {
		return err
	}
	refs := fragmentRefs(resolveFragments)
	w := cmd.OutOrStdout()

	l := newLoader()
	resolver, err := buildResolver(l, refs)
	if err != nil {
		return err
	}
	if err := printResolved(w, format, target, resolver); err != nil {
		return err
	}

	if !resolveWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("watching %d fragment files", len(l.Files()))
	return l.Watch(ctx, func(path string) {
		log.Infof("%s changed, resolving again", path)
		l.Reset()
		resolver, err := buildResolver(l, refs)
		if err != nil {
			log.Errorf("resolve: %v", err)
			return
		}
		if err := printResolved(w, format, target, resolver); err != nil {
			log.Errorf("resolve: %v", err)
		}
	})
}

func printResolved(w io.Writer, format output.Format, target string, resolver *ruleset.Resolver) error {
	eff := resolver.Resolve(target)
	for _, warning := range ruleset.UnknownRules(eff) {
		log.Debugf("resolve: %s", warning)
	}

	if format != output.FormatText {
		return output.Encode(w, format, eff)
	}
	p := output.NewPrinter()
	p.Writer = w
	p.PrintConfig(ruleset.NormalizePath(target), eff)
	fmt.Fprintln(w)
	return nil
}

// relativeTarget makes an absolute target path relative to the working
// directory, which override patterns are written against.
func relativeTarget(target string) (string, error) {
	if !filepath.IsAbs(target) {
		return target, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	rel, err := filepath.Rel(wd, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %s is outside the working directory %s", target, wd)
	}
	return rel, nil
}
