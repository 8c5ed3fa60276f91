package steps

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/vcs"
)

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	out := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(data)
	}
	return out
}

func TestRelease_ExportStampDocsPackage(t *testing.T) {
	f := newFixture(t)
	f.runner.onRun = writeIndex
	exporter := &fakeExporter{
		files: map[string]string{
			"jarmon/jarmon.js":                      "var jarmon;",
			"jarmonbuild/yuidoc_template/main.tmpl": "tmpl",
		},
		rev: vcs.Revision{ID: "0123abcd", Revno: 42, BranchNick: "trunk", Date: time.Unix(1299999999, 0).UTC(), Clean: true},
	}
	d := f.deps()
	d.Exporter = exporter

	require.NoError(t, NewRelease(d, nil).Run(context.Background(), f.bc))

	archivePath := filepath.Join(f.wd, "jarmon-1.2.zip")
	assert.Equal(t, archivePath+"\n", f.out.String())

	entries := zipEntries(t, archivePath)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"jarmon-1.2/docs/apidocs/index.html",
		"jarmon-1.2/jarmon/jarmon.js",
		"jarmon-1.2/jarmonbuild/version_info.yaml",
		"jarmon-1.2/jarmonbuild/yuidoc_template/main.tmpl",
	}, names)

	stamp := entries["jarmon-1.2/jarmonbuild/version_info.yaml"]
	assert.Contains(t, stamp, "revision_id: 0123abcd")
	assert.Contains(t, stamp, "revno: 42")
	assert.Contains(t, stamp, `build_version: "1.2"`)

	require.Len(t, f.runner.ran, 1)
	buildDir := f.bc.BuildDir()
	assert.Contains(t, f.runner.ran[0].Args, filepath.Join(buildDir, "jarmon"), "docs are generated from the exported tree")
	assert.Contains(t, f.runner.ran[0].Args, "--template="+filepath.Join(buildDir, "jarmonbuild", "yuidoc_template"))
}

func TestRelease_ExportFailure(t *testing.T) {
	f := newFixture(t)
	d := f.deps()
	d.Exporter = &fakeExporter{exportErr: &vcs.ExportError{Status: vcs.StatusNoRepository, Src: f.wd, Dest: f.bc.BuildDir()}}

	err := NewRelease(d, nil).Run(context.Background(), f.bc)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryBuild))

	ce, _ := errors.AsClassified(err)
	status, ok := ce.Context().Get("status")
	require.True(t, ok)
	assert.Equal(t, vcs.StatusNoRepository, status)
	assert.Empty(t, f.runner.ran, "docs are not generated after a failed export")
	assert.NoFileExists(t, filepath.Join(f.wd, "jarmon-1.2.zip"))
}

func TestRelease_DocsFailureLeavesNoArchive(t *testing.T) {
	f := newFixture(t)
	f.cfg.Toolset.Checksum = md5Of(t, []byte("tampered"))
	d := f.deps()
	d.Exporter = &fakeExporter{files: map[string]string{"jarmon/jarmon.js": "x"}}

	err := NewRelease(d, nil).Run(context.Background(), f.bc)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryIntegrity))
	assert.NoFileExists(t, filepath.Join(f.wd, "jarmon-1.2.zip"))
	assert.False(t, strings.Contains(f.out.String(), ".zip"))
}

func TestRelease_DistDir(t *testing.T) {
	f := newFixture(t)
	f.runner.onRun = writeIndex
	f.cfg.Paths.DistDir = "dist"
	d := f.deps()
	d.Exporter = &fakeExporter{files: map[string]string{"README": "r"}}

	require.NoError(t, NewRelease(d, nil).Run(context.Background(), f.bc))
	assert.FileExists(t, filepath.Join(f.wd, "dist", "jarmon-1.2.zip"))
}
