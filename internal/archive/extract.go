package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafePath is returned for entries that would be written outside the destination.
var ErrUnsafePath = errors.New("entry escapes destination directory")

// Extract unpacks every entry of the zip at archivePath whose name starts with
// prefix into destDir, keeping the entry's relative path. It returns the
// written file paths. Nothing is rolled back when extraction fails midway.
func Extract(archivePath, destDir, prefix string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &ArchiveError{Op: "open", Path: archivePath, Err: err}
	}
	defer func() { _ = r.Close() }()

	var written []string
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		target, err := entryTarget(destDir, f.Name)
		if err != nil {
			return written, &ArchiveError{Op: "extract", Path: archivePath, Entry: f.Name, Err: err}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return written, &ArchiveError{Op: "extract", Path: archivePath, Entry: f.Name, Err: err}
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return written, &ArchiveError{Op: "extract", Path: archivePath, Entry: f.Name, Err: err}
		}
		written = append(written, target)
	}
	return written, nil
}

func entryTarget(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return filepath.Join(destDir, clean), nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // archives are checksum verified before extraction
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
