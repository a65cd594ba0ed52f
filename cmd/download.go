package cmd

import (
	"os"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var outputPath, profile, region string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "download [URL] [--output OUTPUT_PATH]",
		Short: "Download a file via HTTP/HTTPS, S3 or git",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			url := args[0]
			if outputPath == "" {
				outputPath = utils.FileNameFromURL(url)
			}
			if info, err := os.Stat(outputPath); err == nil && !info.IsDir() {
				output.PrintWarning("Overwriting existing " + outputPath)
			}
			if err := newFetcher(appConfig).Download(cmd.Context(), outputPath, url); err != nil {
				fail(err)
			}
			output.PrintSuccess("\nSaved " + outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Read size per chunk in bytes")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile for s3:// URLs")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for s3:// URLs")
	return cmd
}
