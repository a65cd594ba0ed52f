package fetcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

// writeStream copies r into job.OutputPath in ChunkSize reads, truncating
// any existing file. A failed copy leaves the partial file in place.
func writeStream(job *utils.FetchJob, r io.Reader, total int64) error {
	outFile, err := os.OpenFile(job.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer outFile.Close()

	chunkSize := job.ChunkSize
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}
	progress := newProgressReporter(filepath.Base(job.OutputPath), job.Progress, job.ReportInterval, total)
	buffer := make([]byte, chunkSize)
	for {
		bytesRead, readErr := r.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return fmt.Errorf("error writing to output file: %w", writeErr)
			}
			progress.Add(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	progress.Finish()

	state := progress.State()
	if state.TotalBytes >= 0 && state.BytesWritten != state.TotalBytes {
		log.Warn().Str("op", "fetcher/stream").Str("job", job.ID).
			Int64("written", state.BytesWritten).Int64("declared", state.TotalBytes).
			Msg("Size mismatch against declared Content-Length")
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	log.Debug().Str("op", "fetcher/stream").Str("job", job.ID).Msgf("Wrote %s to %s", utils.FormatBytes(uint64(state.BytesWritten)), job.OutputPath)
	return nil
}
