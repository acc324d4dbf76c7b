package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/lintconf/src/config"
	"github.com/sofmeright/lintconf/src/output"
	"github.com/sofmeright/lintconf/src/ruleset"
)

var validateFragments []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check config and fragments",
	Long: `Validate .lintconf.yml, then load and link every configured fragment.

Schema errors, missing references, extends cycles and malformed override
patterns fail validation. Rules whose plugin is not loaded are reported
but do not fail.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringSliceVar(&validateFragments, "fragment", nil, "fragment references (default: from config)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	color := output.UseColor()

	sec := output.NewSection(w, "Validate", 0, color)
	defer sec.Close()

	warnings, err := config.Validate(cfg)
	for _, warning := range warnings {
		sec.StatusRow(output.StatusWarn, "config: %s", warning)
	}
	if err != nil {
		sec.StatusRow(output.StatusFailed, "config: %v", err)
		return fmt.Errorf("config is invalid")
	}
	sec.StatusRow(output.StatusOK, "config")

	l := newLoader()
	resolver, err := buildResolver(l, fragmentRefs(validateFragments))
	if err != nil {
		sec.StatusRow(output.StatusFailed, "fragments: %v", err)
		return fmt.Errorf("fragments are invalid")
	}
	sec.StatusRow(output.StatusOK, "%d fragments, %d override blocks",
		len(resolver.Chain()), len(resolver.Overrides()))

	// Applying every block yields the widest plugin set any file can see.
	all := make([]int, len(resolver.Overrides()))
	for i := range all {
		all[i] = i
	}
	unknown := ruleset.UnknownRules(resolver.Apply(all))
	for _, u := range unknown {
		sec.StatusRow(output.StatusWarn, "%s", u)
	}

	base := resolver.Base()
	off, warn, errs := base.Rules.Count()
	sec.Separator()
	sec.Row("base: %s", output.RulesSummaryLine(off, warn, errs, color))
	if files := l.Files(); len(files) > 0 {
		sec.Row("%s", output.Dimmed(fmt.Sprintf("%d fragment files on disk", len(files)), color))
	}
	return nil
}
