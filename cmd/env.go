package cmd

import (
	"fmt"
	"runtime"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/toolchain"
	"github.com/spf13/cobra"
)

func newEnvCmd() *cobra.Command {
	var dir, envFile string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "env [ARCH] [--print]",
		Short: "Write the environment file for an installed toolchain",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			arch := appConfig.Toolchain.DefaultArch
			if len(args) > 0 {
				arch = args[0]
			}
			selector, err := appConfig.Selector()
			if err != nil {
				fail(err)
			}
			tc, err := selector.Lookup(arch, runtime.GOOS)
			if err != nil {
				fail(err)
			}
			vars, err := toolchain.AbsEnvVars(tc, appConfig.Toolchain.Dir)
			if err != nil {
				fail(err)
			}
			if printOnly {
				fmt.Fprint(cmd.OutOrStdout(), toolchain.FormatEnv(vars))
				return
			}
			if err := toolchain.WriteEnvFile(appConfig.Toolchain.EnvFile, vars); err != nil {
				fail(err)
			}
			output.PrintInfo(fmt.Sprintf("Wrote %s (COMPILE_TOOL_PATH=%s)", appConfig.Toolchain.EnvFile, vars[0].Value))
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Toolchain install directory")
	cmd.Flags().StringVarP(&envFile, "env-file", "e", "", "Environment file to write")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print to stdout instead of writing the file")
	return cmd
}
