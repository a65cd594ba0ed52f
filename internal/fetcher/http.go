package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

type HTTPSource struct{}

func (s *HTTPSource) ValidateJob(job *utils.FetchJob) error {
	parsedURL, err := url.Parse(job.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host in %s", job.URL)
	}
	return nil
}

func (s *HTTPSource) Download(ctx context.Context, job *utils.FetchJob) error {
	client := utils.NewHTTPClient(job.HTTPClientConfig)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", utils.ErrUnexpectedStatus, resp.StatusCode)
	}

	// ContentLength is -1 when the header is absent; the download proceeds
	// with an unknown total.
	if resp.ContentLength < 0 {
		log.Warn().Str("op", "fetcher/http").Str("job", job.ID).Msg("Server did not send Content-Length, percentage unavailable")
	}
	log.Debug().Str("op", "fetcher/http").Str("job", job.ID).Int64("size", resp.ContentLength).Msgf("Streaming %s", job.URL)
	return writeStream(job, resp.Body, resp.ContentLength)
}
