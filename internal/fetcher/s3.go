package fetcher

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

// S3Source fetches s3://bucket/key objects from a private toolchain mirror.
type S3Source struct {
	Profile string
	Region  string
}

func (s *S3Source) ValidateJob(job *utils.FetchJob) error {
	bucket, key, err := utils.ParseS3URL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	return nil
}

func (s *S3Source) Download(ctx context.Context, job *utils.FetchJob) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)

	cfg, err := utils.LoadAWSConfig(ctx, s.Profile, s.Region)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(cfg)
	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	size := int64(-1)
	if obj.ContentLength != nil {
		size = *obj.ContentLength
	}
	log.Info().Str("op", "fetcher/s3").Str("job", job.ID).Msgf("Starting object download for s3://%s/%s", bucket, key)
	return writeStream(job, obj.Body, size)
}
