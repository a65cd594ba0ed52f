package cmd

import (
	"github.com/hkdywg/toolfetch/internal/extract"
	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "extract [ARCHIVE] [DEST]",
		Short: "Extract a .tar.xz, .tar.bz2 or .zip archive into DEST",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			opts := extract.Options{Backend: appConfig.Extract.Backend}
			if err := extract.Extract(cmd.Context(), args[0], args[1], opts); err != nil {
				fail(err)
			}
			output.PrintSuccess("Extracted " + args[0] + " into " + args[1])
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "", "Extraction backend (exec or native)")
	return cmd
}
