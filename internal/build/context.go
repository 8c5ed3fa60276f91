package build

import (
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
)

// DefaultVersion is used when no build version is given.
const DefaultVersion = "0"

// Context is the immutable state shared by a step for one invocation.
type Context struct {
	workingDir string
	buildDir   string
	version    string
}

// NewContext resolves workingDir to an absolute path and buildDir against it.
// The build directory must be a strict descendant of the working directory.
func NewContext(workingDir, buildDir, version string) (Context, error) {
	if workingDir == "" {
		workingDir = "."
	}
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return Context{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve working directory").
			WithContext("path", workingDir).
			Build()
	}
	if buildDir == "" {
		return Context{}, errors.ConfigError("build directory must not be empty").Build()
	}
	if version == "" {
		version = DefaultVersion
	}
	c := Context{workingDir: abs, version: version}
	c.buildDir = c.Path(buildDir)
	if !within(c.workingDir, c.buildDir) {
		return Context{}, errors.ConfigError("build directory must be inside the working directory").
			WithContext("path", c.buildDir).
			WithContext("working_dir", c.workingDir).
			Build()
	}
	return c, nil
}

// within reports whether path lies strictly below dir. Both must be clean
// absolute paths.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func (c Context) WorkingDir() string { return c.workingDir }
func (c Context) BuildDir() string   { return c.buildDir }
func (c Context) Version() string    { return c.version }

// WithVersion returns a copy of c carrying version.
func (c Context) WithVersion(version string) Context {
	if version == "" {
		return c
	}
	c.version = version
	return c
}

// Path resolves p against the working directory unless it is absolute.
func (c Context) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.workingDir, p)
}

// InBuildDir reports whether path lies strictly below the build directory.
func (c Context) InBuildDir(path string) bool {
	return within(c.buildDir, filepath.Clean(path))
}

// BuildPath joins elem under the build directory.
func (c Context) BuildPath(elem ...string) string {
	return filepath.Join(append([]string{c.buildDir}, elem...)...)
}
