package cmd

import (
	"fmt"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/pack"
	"github.com/spf13/cobra"
)

func newPackCmd() *cobra.Command {
	var uploadURL, profile, region string

	cmd := &cobra.Command{
		Use:   "pack [FOLDER] [ARCHIVE] [--upload s3://BUCKET/KEY]",
		Short: "Zip FOLDER with bzip2 compression",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			count, err := pack.Pack(cmd.Context(), args[0], args[1])
			if err != nil {
				fail(err)
			}
			output.PrintSuccess(fmt.Sprintf("Packed %d files into %s", count, args[1]))
			if uploadURL == "" {
				return
			}
			opts := pack.UploadOptions{Profile: appConfig.S3.Profile, Region: appConfig.S3.Region}
			if err := pack.Upload(cmd.Context(), args[1], uploadURL, opts); err != nil {
				fail(err)
			}
			output.PrintSuccess("Uploaded to " + uploadURL)
		},
	}

	cmd.Flags().StringVarP(&uploadURL, "upload", "u", "", "Upload the archive to this s3:// URL")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile for the upload")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for the upload")
	return cmd
}
