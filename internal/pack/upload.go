package pack

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type UploadOptions struct {
	Profile string
	Region  string
}

// Upload copies the archive at archivePath to an s3://bucket/key destination.
func Upload(ctx context.Context, archivePath, dest string, opts UploadOptions) error {
	bucket, key, err := utils.ParseS3URL(dest)
	if err != nil {
		return err
	}
	cfg, err := utils.LoadAWSConfig(ctx, opts.Profile, opts.Region)
	if err != nil {
		return err
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("error opening archive: %w", err)
	}
	defer f.Close()

	uploader := manager.NewUploader(s3.NewFromConfig(cfg), func(u *manager.Uploader) {
		u.PartSize = 16 * utils.MiB
	})
	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("error uploading to %s: %w", dest, err)
	}
	log.Info().Str("op", "pack/upload").Str("location", result.Location).Msgf("Uploaded %s", archivePath)
	return nil
}
