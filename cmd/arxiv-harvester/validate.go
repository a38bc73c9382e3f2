package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
)

var validateCmd = &cobra.Command{
	Use:   "validate [snapshot...]",
	Short: "Validate snapshot files against the artifact schema",
	Long: `Validate checks snapshot files against the embedded JSON Schema, accepting
both the bare-array layout and the envelope layout. With no arguments it
checks the configured output path. Intended as a publishing gate in CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{harvesterConfig().Fetch.OutputPath}
		}

		failed := 0
		for _, path := range paths {
			if err := fetch.ValidateSnapshot(path); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d snapshots invalid", failed, len(paths))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
