package steps

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/archive"
	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/vcs"
)

// Release exports the committed tree, stamps it, renders the API docs into
// it and packages the result.
type Release struct {
	deps    Deps
	dirs    *build.Dirs
	apidocs *Apidocs
}

// NewRelease creates the release step. apidocs is run against the exported tree.
func NewRelease(d Deps, apidocs *Apidocs) *Release {
	d, dirs := d.withDefaults().forStep(IDRelease)
	if apidocs == nil {
		apidocs = NewApidocs(d)
	}
	return &Release{deps: d, dirs: dirs, apidocs: apidocs}
}

func (s *Release) ID() ID { return IDRelease }

func (s *Release) Description() string {
	return "Export the sources, build the API docs and create the release archive"
}

func (s *Release) Run(ctx context.Context, bc build.Context) error {
	cfg := s.deps.Config
	r := s.deps.Reporter

	if err := s.dirs.Protect(bc.WorkingDir()).Reset(bc.BuildDir()); err != nil {
		return err
	}

	r.Debug("Exporting source tree", logfields.Stage(string(StageExport)), logfields.Path(bc.BuildDir()))
	if err := s.deps.Exporter.Export(ctx, bc.WorkingDir(), bc.BuildDir()); err != nil {
		return exportError(err)
	}

	stampPath := bc.BuildPath(filepath.FromSlash(cfg.Paths.VersionFile))
	r.Debug("Writing version stamp", logfields.Stage(string(StageStamp)), logfields.Path(stampPath))
	rev, err := s.deps.Exporter.Revision(ctx, bc.WorkingDir())
	if err != nil {
		return errors.WrapError(err, errors.CategoryVCS, "failed to query revision").
			WithContext("path", bc.WorkingDir()).
			Build()
	}
	stamp := vcs.Stamp{Revision: rev, BuildDate: s.deps.Now().UTC(), BuildVersion: bc.Version()}
	if err := vcs.WriteStamp(stampPath, stamp); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write version stamp").
			WithContext("path", stampPath).
			Build()
	}

	r.Debug("Generating API docs", logfields.Stage(string(StageApidocs)))
	if err := s.apidocs.Generate(ctx, bc, bc.BuildDir()); err != nil {
		return err
	}

	distDir := bc.WorkingDir()
	if cfg.Paths.DistDir != "" {
		distDir = bc.Path(cfg.Paths.DistDir)
	}
	if _, err := s.dirs.Ensure(distDir); err != nil {
		return err
	}

	r.Debug("Packaging", logfields.Stage(string(StagePackage)))
	archivePath, files, err := archive.Package(bc.BuildDir(), distDir, cfg.Project.Name, bc.Version())
	if err != nil {
		return archiveError(err, filepath.Join(distDir, archive.RootName(cfg.Project.Name, bc.Version())+".zip"))
	}

	r.Info("Created release archive",
		logfields.Path(archivePath),
		logfields.Files(files),
		logfields.Revision(rev.ID))
	_, _ = fmt.Fprintln(s.deps.Stdout, archivePath)
	return nil
}

func exportError(err error) error {
	b := errors.WrapError(err, errors.CategoryBuild, "source export failed")
	var ee *vcs.ExportError
	if stderrors.As(err, &ee) {
		b = b.WithContext("status", ee.Status)
	}
	return b.Build()
}
