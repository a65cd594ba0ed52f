package cmd

import (
	"os"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/runner"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [STEPS_YAML]",
		Short: "Run CI steps from a YAML file in order, stopping at the first failure",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			plan, err := runner.LoadPlan(args[0])
			if err != nil {
				fail(err)
			}
			mgr := output.NewManager(os.Stderr)
			err = runner.New(os.Stdout, os.Stderr, mgr).Run(cmd.Context(), plan)
			mgr.ShowSummary()
			if err != nil {
				fail(err)
			}
		},
	}
	return cmd
}
