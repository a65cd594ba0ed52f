// Package pack bundles a folder into a bzip2-compressed zip archive.
package pack

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/rs/zerolog/log"
)

// Bzip2Method is the zip compression method ID for bzip2.
const Bzip2Method uint16 = 12

func newBzip2Writer(w io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return nil, err
	}
	return bw, nil
}

// EntryName returns the archive name for rel, a path relative to
// sourceFolder: prefixed with the folder's own name, with forward slashes.
func EntryName(sourceFolder, rel string) string {
	name := filepath.ToSlash(rel)
	base := filepath.Base(filepath.Clean(sourceFolder))
	if base != "." && base != string(filepath.Separator) {
		name = path.Join(base, name)
	}
	return strings.TrimLeft(name, "/")
}

// Pack writes every file under sourceFolder into archivePath, replacing any
// existing archive. sourceFolder may itself be a symlink; symlinked files
// are stored with their target's contents under the link's name, while
// symlinked directories are not descended into. Returns the number of
// entries written.
func Pack(ctx context.Context, sourceFolder, archivePath string) (int, error) {
	root, err := resolvePath(sourceFolder)
	if err != nil {
		return 0, fmt.Errorf("error reading source folder: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("error reading source folder: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", sourceFolder)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("error creating archive: %w", err)
	}
	defer out.Close()
	self, err := resolvePath(archivePath)
	if err != nil {
		return 0, fmt.Errorf("error resolving archive path: %w", err)
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(Bzip2Method, newBzip2Writer)

	count := 0
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(p)
			if err != nil {
				log.Warn().Str("op", "pack/pack").Err(err).Msgf("Skipping broken symlink %s", p)
				return nil
			}
			if !target.Mode().IsRegular() {
				log.Debug().Str("op", "pack/pack").Msgf("Skipping symlink to non-file %s", p)
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		// Skip the archive itself when it is written inside the folder.
		if p == self {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := EntryName(sourceFolder, rel)
		if err := addFile(zw, p, name); err != nil {
			return fmt.Errorf("error adding %s: %w", p, err)
		}
		log.Debug().Str("op", "pack/pack").Msgf("Added %s", name)
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return count, err
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("error finalizing archive: %w", err)
	}
	log.Info().Str("op", "pack/pack").Int("entries", count).Msgf("Packed %s into %s", sourceFolder, archivePath)
	return count, nil
}

// resolvePath returns the absolute, symlink-free form of p.
func resolvePath(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// addFile stores the contents at path, following a symlink, as name.
func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = Bzip2Method
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
