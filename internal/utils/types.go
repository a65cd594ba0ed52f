package utils

import (
	"context"
	"io"
	"time"
)

// Source fetches one kind of URL (http, s3, git) to a local path.
type Source interface {
	ValidateJob(job *FetchJob) error
	Download(ctx context.Context, job *FetchJob) error
}

type FetchJob struct {
	ID               string
	URL              string
	OutputPath       string
	ChunkSize        int
	ReportInterval   time.Duration
	Progress         io.Writer
	HTTPClientConfig HTTPClientConfig
	Metadata         map[string]any
}
