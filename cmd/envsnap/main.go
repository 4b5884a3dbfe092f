// Command envsnap captures the current user environment into the snapshot
// file consumed by the grading harness. The grading setup runs it as the
// user before any privileged test starts.
package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/refutils/go-refutils/console"
	"github.com/refutils/go-refutils/envsnap"
)

func main() {
	var output string

	cmd := &cobra.Command{
		Use:          "envsnap",
		Short:        "capture the user environment for the grading harness",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := envsnap.Capture(afero.NewOsFs(), output); err != nil {
				return err
			}
			console.Okf("environment captured to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", envsnap.DefaultPath, "snapshot path")

	if err := cmd.Execute(); err != nil {
		console.Errf("%v", err)
		os.Exit(1)
	}
}
