package steps

import (
	"context"
	stderrors "errors"
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/archive"
	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/process"
)

// Apidocs downloads the documentation generator and renders the API docs.
type Apidocs struct {
	deps Deps
	dirs *build.Dirs
}

// NewApidocs creates the apidocs step.
func NewApidocs(d Deps) *Apidocs {
	d, dirs := d.withDefaults().forStep(IDApidocs)
	return &Apidocs{deps: d, dirs: dirs}
}

func (s *Apidocs) ID() ID { return IDApidocs }

func (s *Apidocs) Description() string {
	return "Download the documentation generator and build the API docs"
}

// Run generates docs for the sources in the working directory.
func (s *Apidocs) Run(ctx context.Context, bc build.Context) error {
	return s.Generate(ctx, bc, bc.WorkingDir())
}

func (s *Apidocs) stage(st Stage, msg string, args ...any) {
	s.deps.Reporter.Debug(msg, append([]any{logfields.Stage(string(st))}, args...)...)
}

// Generate runs the generator against the tree rooted at sourceRoot and
// writes into the build directory. The extracted toolset is removed once
// extraction succeeded, whatever the generator outcome.
func (s *Apidocs) Generate(ctx context.Context, bc build.Context, sourceRoot string) (err error) {
	cfg := s.deps.Config
	tool := cfg.Toolset
	dirs := s.dirs.Protect(bc.WorkingDir(), sourceRoot)

	outDir := bc.BuildPath(filepath.FromSlash(cfg.Paths.DocsOutput))
	toolDir := bc.BuildPath(filepath.FromSlash(tool.Root))
	for _, p := range []string{outDir, toolDir} {
		if !bc.InBuildDir(p) {
			return errors.ConfigError("generator directories must be inside the build directory").
				WithContext("path", p).
				WithContext("build_dir", bc.BuildDir()).
				Build()
		}
	}

	s.stage(StageDependencyCheck, "Checking dependencies")
	req := process.Requirement{Program: tool.Interpreter, Modules: tool.Modules}
	if err := process.Check(ctx, s.deps.Runner, req); err != nil {
		return dependencyError(err)
	}

	s.stage(StageEnsureDir, "Preparing build directory", logfields.Path(bc.BuildDir()))
	if _, err := dirs.Ensure(bc.BuildDir()); err != nil {
		return err
	}

	zipPath := cachePath(s.deps.cacheDir(bc), tool.URL)
	s.stage(StageFetchTool, "Fetching documentation generator", logfields.URL(tool.URL))
	s.stage(StageVerifyTool, "Verifying documentation generator", logfields.Digest(tool.Checksum.String()))
	if err := fetchVerified(ctx, s.deps.Fetcher, s.deps.Reporter, tool.URL, zipPath, tool.Checksum); err != nil {
		return err
	}

	s.stage(StageCleanOldOutput, "Removing previous output", logfields.Path(outDir))
	if err := dirs.Clean(outDir); err != nil {
		return err
	}

	s.stage(StageExtractTool, "Extracting documentation generator", logfields.Path(toolDir))
	if _, err := archive.Extract(zipPath, bc.BuildDir(), tool.Root); err != nil {
		return archiveError(err, zipPath)
	}
	defer func() {
		s.stage(StageCleanup, "Removing extracted toolset", logfields.Path(toolDir))
		if cerr := dirs.Clean(toolDir); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cmd := process.Command{
		Name: tool.Interpreter,
		Args: []string{
			filepath.Join(toolDir, filepath.FromSlash(tool.Script)),
			resolve(sourceRoot, cfg.Paths.Source),
			"--parseroutdir=" + outDir,
			"--outputdir=" + outDir,
			"--template=" + resolve(sourceRoot, cfg.Paths.Template),
			"--version=" + bc.Version(),
			"--project=" + cfg.Project.Title,
			"--projecturl=" + cfg.Project.URL,
		},
		Dir: bc.WorkingDir(),
	}
	s.stage(StageInvokeGenerator, "Running documentation generator", logfields.Command(cmd.String()))
	if _, err := s.deps.Runner.Run(ctx, cmd); err != nil {
		return commandError(err, "documentation generator failed")
	}

	s.inspectOutput(outDir)
	return nil
}

// resolve joins p under root unless p is absolute.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

func dependencyError(err error) error {
	b := errors.WrapError(err, errors.CategoryBuild, "unmet dependency")
	var missing *process.MissingError
	if stderrors.As(err, &missing) {
		b = b.WithContext("dependency", missing.Name)
	}
	return b.Build()
}

func commandError(err error, msg string) error {
	b := errors.WrapError(err, errors.CategoryBuild, msg)
	var exitErr *process.ExitError
	if stderrors.As(err, &exitErr) {
		b = b.WithContext("command", exitErr.Command).WithContext("exit_code", exitErr.Code)
	}
	return b.Build()
}

func archiveError(err error, path string) error {
	return errors.WrapError(err, errors.CategoryArchive, "archive operation failed").
		WithContext("path", path).
		Build()
}
