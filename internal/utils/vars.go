package utils

import (
	"errors"
	"time"
)

const (
	DefaultChunkSize      = 512
	DefaultReportInterval = 2 * time.Second
	MiB                   = 1024 * 1024
	ToolUserAgent         = "toolfetch"
)

var (
	ErrToolchainNotFound = errors.New("toolchain not found")
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrUnsupportedHost   = errors.New("extraction not supported on this host")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrInvalidS3URL      = errors.New("invalid S3 URL")
)
