package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// CLIExtractor shells out to tar or unzip without going through a shell.
type CLIExtractor struct {
	Format     string
	BinaryPath string
}

func binaryFor(format string) string {
	if format == FormatZip {
		return "unzip"
	}
	return "tar"
}

func newCLIExtractor(format string) (*CLIExtractor, error) {
	bin := binaryFor(format)
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s binary not found in PATH: %w", bin, err)
	}
	return &CLIExtractor{Format: format, BinaryPath: path}, nil
}

func (c *CLIExtractor) Name() string {
	return binaryFor(c.Format)
}

// BuildArgs returns the argv (without the binary) for unpacking
// archivePath into destDir.
func BuildArgs(format, archivePath, destDir string) []string {
	switch format {
	case FormatTarXz:
		return []string{"-xvJf", archivePath, "-C", destDir}
	case FormatTarBz2:
		return []string{"-xvjf", archivePath, "-C", destDir}
	case FormatZip:
		return []string{"-o", archivePath, "-d", destDir}
	}
	return nil
}

func (c *CLIExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	args := BuildArgs(c.Format, archivePath, destDir)
	cmd := exec.CommandContext(ctx, c.BinaryPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s extraction failed: %w\nOutput: %s", c.Name(), err, strings.TrimSpace(string(out)))
	}
	log.Debug().Str("op", "extract/cli").Int("lines", strings.Count(string(out), "\n")).Msgf("%s finished", c.Name())
	return nil
}
