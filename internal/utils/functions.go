package utils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

// EnsureDir creates dir and any missing parents. An existing directory is
// not an error; an existing non-directory is.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// MiBPerSecond converts a byte delta over elapsed seconds into MiB/s.
func MiBPerSecond(bytes int64, elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) / MiB / elapsed
}

// FileNameFromURL returns the last path element of rawURL, or "download".
func FileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidS3URL, err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme %q", ErrInvalidS3URL, parsed.Scheme)
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if parsed.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URL, rawURL)
	}
	return parsed.Host, key, nil
}
