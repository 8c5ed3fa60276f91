package steps

import (
	"context"
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/archive"
	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/logfields"
)

// Jsdeps fetches, verifies and unpacks the configured JavaScript libraries.
type Jsdeps struct {
	deps Deps
	dirs *build.Dirs
}

// NewJsdeps creates the jsdeps step.
func NewJsdeps(d Deps) *Jsdeps {
	d, dirs := d.withDefaults().forStep(IDJsdeps)
	return &Jsdeps{deps: d, dirs: dirs}
}

func (s *Jsdeps) ID() ID { return IDJsdeps }

func (s *Jsdeps) Description() string {
	return "Download and unpack third-party JavaScript dependencies"
}

func (s *Jsdeps) Run(ctx context.Context, bc build.Context) error {
	deps := s.deps.Config.JSDeps
	if len(deps) == 0 {
		s.deps.Reporter.Info("No JavaScript dependencies configured")
		return nil
	}

	target := bc.Path(s.deps.Config.Paths.Dependencies)
	dirs := s.dirs.Protect(bc.WorkingDir(), target)
	if _, err := dirs.Ensure(target); err != nil {
		return err
	}
	cacheDir := s.deps.cacheDir(bc)

	for _, dep := range deps {
		zipPath := cachePath(cacheDir, dep.URL)
		if err := fetchVerified(ctx, s.deps.Fetcher, s.deps.Reporter, dep.URL, zipPath, dep.Checksum); err != nil {
			return err
		}
		if err := dirs.Clean(filepath.Join(target, filepath.FromSlash(dep.Prefix))); err != nil {
			return err
		}
		files, err := archive.Extract(zipPath, target, dep.Prefix)
		if err != nil {
			return archiveError(err, zipPath)
		}
		s.deps.Reporter.Info("Installed dependency",
			logfields.Name(dep.Name),
			logfields.Prefix(dep.Prefix),
			logfields.Files(len(files)))
	}
	return nil
}
