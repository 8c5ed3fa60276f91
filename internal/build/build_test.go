package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

func TestNewContext(t *testing.T) {
	wd := t.TempDir()

	c, err := NewContext(wd, "build", "")
	require.NoError(t, err)
	assert.Equal(t, wd, c.WorkingDir())
	assert.Equal(t, filepath.Join(wd, "build"), c.BuildDir())
	assert.Equal(t, DefaultVersion, c.Version())
	assert.Equal(t, filepath.Join(wd, "build", "docs", "apidocs"), c.BuildPath("docs", "apidocs"))

	abs := filepath.Join(wd, "out", "build")
	c, err = NewContext(wd, abs, "1.2")
	require.NoError(t, err)
	assert.Equal(t, abs, c.BuildDir())
	assert.Equal(t, "1.2", c.Version())
}

func TestNewContext_BuildDirOutsideWorkingDir(t *testing.T) {
	wd := t.TempDir()

	for _, buildDir := range []string{".", "./", "..", "../sibling", "build/../..", filepath.Dir(wd), t.TempDir()} {
		t.Run(buildDir, func(t *testing.T) {
			_, err := NewContext(wd, buildDir, "1")
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestNewContext_EmptyBuildDir(t *testing.T) {
	_, err := NewContext(t.TempDir(), "", "1")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestContext_WithVersionCopies(t *testing.T) {
	c, err := NewContext(t.TempDir(), "build", "1.0")
	require.NoError(t, err)

	d := c.WithVersion("2.0")
	assert.Equal(t, "1.0", c.Version())
	assert.Equal(t, "2.0", d.Version())
	assert.Equal(t, "1.0", c.WithVersion("").Version())
}

func TestDirs_Ensure(t *testing.T) {
	dirs := NewDirs(observability.Discard())
	target := filepath.Join(t.TempDir(), "a", "b")

	created, err := dirs.Ensure(target)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, target)

	created, err = dirs.Ensure(target)
	require.NoError(t, err)
	assert.False(t, created, "second call reuses the directory")
}

func TestDirs_EnsureOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewDirs(nil).Ensure(file)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestDirs_CleanAndReset(t *testing.T) {
	dirs := NewDirs(nil)
	root := t.TempDir()
	target := filepath.Join(root, "out")

	require.NoError(t, dirs.Clean(target), "missing path is fine")

	require.NoError(t, os.MkdirAll(filepath.Join(target, "nested"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(target, "nested", "f"), []byte("x"), 0o600))

	require.NoError(t, dirs.Reset(target))
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, dirs.Clean(target))
	assert.NoDirExists(t, target)
}

func TestDirs_CleanRefusesProtectedPaths(t *testing.T) {
	wd := t.TempDir()
	precious := filepath.Join(wd, "precious.txt")
	require.NoError(t, os.WriteFile(precious, []byte("x"), 0o600))
	buildDir := filepath.Join(wd, "build")
	require.NoError(t, os.MkdirAll(filepath.Join(buildDir, "docs"), 0o750))

	dirs := NewDirs(nil).Protect(wd)

	for _, target := range []string{wd, filepath.Dir(wd), filepath.Join(buildDir, "..")} {
		err := dirs.Clean(target)
		require.Error(t, err, target)
		assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
		require.Error(t, dirs.Reset(target), target)
	}
	assert.FileExists(t, precious)

	require.NoError(t, dirs.Clean(filepath.Join(buildDir, "docs")), "paths below a protected dir are removable")
	assert.NoDirExists(t, filepath.Join(buildDir, "docs"))

	require.NoError(t, NewDirs(nil).Clean(buildDir), "Protect returns a copy")
}
