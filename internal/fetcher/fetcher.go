// Package fetcher streams remote toolchain artifacts to local files.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type Options struct {
	HTTP           utils.HTTPClientConfig
	ChunkSize      int
	ReportInterval time.Duration
	Progress       io.Writer
	S3Profile      string
	S3Region       string
}

type Fetcher struct {
	opts    Options
	sources map[string]utils.Source
}

func New(opts Options) *Fetcher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = utils.DefaultChunkSize
	}
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = utils.DefaultReportInterval
	}
	httpSource := &HTTPSource{}
	gitSource := &GitSource{}
	return &Fetcher{
		opts: opts,
		sources: map[string]utils.Source{
			"http":      httpSource,
			"https":     httpSource,
			"s3":        &S3Source{Profile: opts.S3Profile, Region: opts.S3Region},
			"git+https": gitSource,
			"git+http":  gitSource,
			"git+ssh":   gitSource,
		},
	}
}

// Scheme returns the registry key used for rawURL.
func Scheme(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return strings.ToLower(parsed.Scheme), nil
}

// IsDirectorySource reports whether rawURL is fetched into a directory
// rather than a single archive file.
func IsDirectorySource(rawURL string) bool {
	scheme, err := Scheme(rawURL)
	return err == nil && strings.HasPrefix(scheme, "git+")
}

// Download fetches rawURL into name. Transport failures are returned as-is,
// wrapped with context; nothing is retried.
func (f *Fetcher) Download(ctx context.Context, name, rawURL string) error {
	scheme, err := Scheme(rawURL)
	if err != nil {
		return err
	}
	source, exists := f.sources[scheme]
	if !exists {
		return fmt.Errorf("unsupported URL scheme %q", scheme)
	}
	job := &utils.FetchJob{
		ID:               uuid.NewString(),
		URL:              rawURL,
		OutputPath:       name,
		ChunkSize:        f.opts.ChunkSize,
		ReportInterval:   f.opts.ReportInterval,
		Progress:         f.opts.Progress,
		HTTPClientConfig: f.opts.HTTP,
		Metadata:         make(map[string]any),
	}
	if err := source.ValidateJob(job); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	log.Debug().Str("op", "fetcher/fetcher").Str("job", job.ID).Str("scheme", scheme).Msgf("Fetching %s", rawURL)
	if err := source.Download(ctx, job); err != nil {
		log.Error().Str("op", "fetcher/fetcher").Str("job", job.ID).Err(err).Msg("Download failed")
		return err
	}
	log.Info().Str("op", "fetcher/fetcher").Str("job", job.ID).Msgf("Downloaded %s", name)
	return nil
}
