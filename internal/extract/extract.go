// Package extract unpacks downloaded toolchain archives into a directory.
//
// Formats are matched by file suffix against a fixed ordered list. The
// default backend invokes the system tar/unzip binaries with a discrete
// argument list and is limited to Linux hosts; the native backend
// decompresses in-process and runs anywhere.
package extract

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

const (
	FormatTarXz  = ".tar.xz"
	FormatTarBz2 = ".tar.bz2"
	FormatZip    = ".zip"

	BackendExec   = "exec"
	BackendNative = "native"
)

// formats is checked in order; the first matching suffix wins.
var formats = []string{FormatTarXz, FormatTarBz2, FormatZip}

// Extractor unpacks one archive format into a destination directory.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, archivePath, destDir string) error
}

type Options struct {
	Backend string
	HostOS  string // defaults to runtime.GOOS
}

// DetectFormat returns the recognised suffix of archivePath.
func DetectFormat(archivePath string) (string, error) {
	lower := strings.ToLower(archivePath)
	for _, suffix := range formats {
		if strings.HasSuffix(lower, suffix) {
			return suffix, nil
		}
	}
	return "", fmt.Errorf("%w: %s", utils.ErrUnsupportedFormat, archivePath)
}

// Extract ensures destDir exists and unpacks archivePath into it.
func Extract(ctx context.Context, archivePath, destDir string, opts Options) error {
	if err := utils.EnsureDir(destDir); err != nil {
		return fmt.Errorf("error creating destination: %w", err)
	}
	format, err := DetectFormat(archivePath)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(format, opts)
	if err != nil {
		return err
	}
	log.Info().Str("op", "extract/extract").Str("backend", extractor.Name()).Msgf("Extracting %s into %s", archivePath, destDir)
	if err := extractor.Extract(ctx, archivePath, destDir); err != nil {
		log.Error().Str("op", "extract/extract").Err(err).Msgf("Extraction of %s failed", archivePath)
		return err
	}
	return nil
}

func newExtractor(format string, opts Options) (Extractor, error) {
	host := opts.HostOS
	if host == "" {
		host = runtime.GOOS
	}
	switch opts.Backend {
	case "", BackendExec:
		if host != "linux" {
			return nil, fmt.Errorf("%w: %s (use the native backend)", utils.ErrUnsupportedHost, host)
		}
		return newCLIExtractor(format)
	case BackendNative:
		return newNativeExtractor(format), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", opts.Backend)
	}
}
