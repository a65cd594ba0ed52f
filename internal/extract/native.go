package extract

import (
	"context"
	"fmt"

	"github.com/mholt/archiver/v3"
)

// NativeExtractor unpacks in-process, so it does not need tar or unzip.
type NativeExtractor struct {
	Format string
}

func newNativeExtractor(format string) *NativeExtractor {
	return &NativeExtractor{Format: format}
}

func (n *NativeExtractor) Name() string {
	return "native"
}

func (n *NativeExtractor) unarchiver() (archiver.Unarchiver, error) {
	switch n.Format {
	case FormatTarXz:
		tx := archiver.NewTarXz()
		tx.OverwriteExisting = true
		return tx, nil
	case FormatTarBz2:
		tb := archiver.NewTarBz2()
		tb.OverwriteExisting = true
		return tb, nil
	case FormatZip:
		z := archiver.NewZip()
		z.OverwriteExisting = true
		return z, nil
	}
	return nil, fmt.Errorf("no native extractor for %s", n.Format)
}

func (n *NativeExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := n.unarchiver()
	if err != nil {
		return err
	}
	if err := u.Unarchive(archivePath, destDir); err != nil {
		return fmt.Errorf("native extraction failed: %w", err)
	}
	return nil
}
