package cmd

import (
	"fmt"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/toolchain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func renderToolchains(entries []toolchain.Toolchain, asYAML bool) (string, error) {
	if asYAML {
		data, err := yaml.Marshal(map[string][]toolchain.Toolchain{"toolchains": entries})
		if err != nil {
			return "", fmt.Errorf("error encoding toolchains: %w", err)
		}
		return string(data), nil
	}
	rows := make([][]string, 0, len(entries))
	for _, tc := range entries {
		rows = append(rows, []string{tc.Arch, tc.Host, tc.URL(), tc.CrossCompile})
	}
	return output.RenderTable([]string{"Arch", "Host", "Source", "Cross Compile"}, rows), nil
}

func newListCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "list [--yaml]",
		Short: "Show the known toolchains",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			selector, err := appConfig.Selector()
			if err != nil {
				fail(err)
			}
			text, err := renderToolchains(selector.Entries(), asYAML)
			if err != nil {
				fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the table as YAML")
	return cmd
}
