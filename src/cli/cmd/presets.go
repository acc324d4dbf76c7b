package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/lintconf/src/output"
	"github.com/sofmeright/lintconf/src/presets"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "List built-in presets or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 1 {
			data, err := presets.Source(args[0])
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}

		color := output.UseColor()
		for _, name := range presets.Names() {
			fmt.Fprintf(w, "%s  %s\n", name, output.Dimmed("extends: "+name, color))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
