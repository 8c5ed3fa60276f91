package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// RootName returns the "<name>-<version>" archive root.
func RootName(name, version string) string {
	return fmt.Sprintf("%s-%s", name, version)
}

// Package writes every regular file below buildDir into a new deflate
// compressed archive <outDir>/<name>-<version>.zip, re-rooting each entry
// under "<name>-<version>/". On failure the partially written archive is
// closed and removed before the original error is returned.
func Package(buildDir, outDir, name, version string) (archivePath string, files int, err error) {
	root := RootName(name, version)
	archivePath = filepath.Join(outDir, root+".zip")

	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return "", 0, &ArchiveError{Op: "write", Path: archivePath, Err: err}
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return "", 0, &ArchiveError{Op: "write", Path: archivePath, Err: err}
	}
	zw := zip.NewWriter(out)

	defer func() {
		cerr := zw.Close()
		if ferr := out.Close(); cerr == nil {
			cerr = ferr
		}
		if err == nil && cerr != nil {
			err = &ArchiveError{Op: "write", Path: archivePath, Err: cerr}
		}
		if err != nil {
			_ = os.Remove(archivePath)
			archivePath, files = "", 0
		}
	}()

	err = filepath.WalkDir(buildDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, aerr := filepath.Abs(p); aerr == nil && abs == absArchive {
			return nil
		}
		rel, rerr := filepath.Rel(buildDir, p)
		if rerr != nil {
			return rerr
		}
		if werr := addFile(zw, p, path.Join(root, filepath.ToSlash(rel))); werr != nil {
			return &ArchiveError{Op: "write", Path: archivePath, Entry: rel, Err: werr}
		}
		files++
		return nil
	})
	if err != nil {
		var ae *ArchiveError
		if !errors.As(err, &ae) {
			err = &ArchiveError{Op: "write", Path: archivePath, Err: err}
		}
		return archivePath, files, err
	}
	return archivePath, files, nil
}

func addFile(zw *zip.Writer, src, entry string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = entry
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
