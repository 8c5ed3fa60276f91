package build

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

const dirPerm = 0o750

// Dirs creates and removes build directories.
type Dirs struct {
	reporter  observability.Reporter
	protected []string
}

// NewDirs returns a Dirs that narrates through r.
func NewDirs(r observability.Reporter) *Dirs {
	if r == nil {
		r = observability.Discard()
	}
	return &Dirs{reporter: r}
}

// Protect returns a copy of d whose Clean and Reset refuse to remove any of
// paths or an ancestor of them.
func (d *Dirs) Protect(paths ...string) *Dirs {
	c := *d
	c.protected = append(append([]string(nil), d.protected...), paths...)
	return &c
}

func (d *Dirs) guard(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve path").
			WithContext("path", path).
			Build()
	}
	for _, p := range d.protected {
		keep, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if keep == abs || within(abs, keep) {
			return errors.FileSystemError("refusing to remove protected directory").
				WithContext("path", abs).
				WithContext("protected", keep).
				Build()
		}
	}
	return nil
}

// Ensure creates path if it does not exist. An existing directory is not an error.
func (d *Dirs) Ensure(path string) (created bool, err error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		d.reporter.Debug("Using existing directory", logfields.Path(path))
		return false, nil
	case err == nil:
		return false, errors.FileSystemError("path exists and is not a directory").
			WithContext("path", path).
			Build()
	case !stderrors.Is(err, fs.ErrNotExist):
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat directory").
			WithContext("path", path).
			Build()
	}

	if err := os.MkdirAll(path, dirPerm); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			WithContext("path", path).
			Build()
	}
	d.reporter.Debug("Created directory", logfields.Path(path))
	return true, nil
}

// Clean removes path recursively. A missing path is not an error. Protected
// paths and their ancestors are never removed.
func (d *Dirs) Clean(path string) error {
	if err := d.guard(path); err != nil {
		return err
	}
	if _, err := os.Lstat(path); stderrors.Is(err, fs.ErrNotExist) {
		d.reporter.Debug("Nothing to remove", logfields.Path(path))
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove directory").
			WithContext("path", path).
			Build()
	}
	d.reporter.Debug("Removed", logfields.Path(path))
	return nil
}

// Reset cleans path and creates it again empty.
func (d *Dirs) Reset(path string) error {
	if err := d.Clean(path); err != nil {
		return err
	}
	_, err := d.Ensure(path)
	return err
}
