package steps

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/checksum"
	"github.com/jarmon/jarmonbuild/internal/config"
	"github.com/jarmon/jarmonbuild/internal/metrics"
	"github.com/jarmon/jarmonbuild/internal/process"
	"github.com/jarmon/jarmonbuild/internal/vcs"
)

// zipBytes builds an in-memory archive from name/content pairs.
func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func md5Of(t *testing.T, data []byte) checksum.Digest {
	t.Helper()
	d, err := checksum.Of(checksum.MD5, data)
	require.NoError(t, err)
	return d
}

var toolsetEntries = map[string]string{
	"yuidoc/bin/yuidoc.py": "print('yuidoc')",
	"yuidoc/lib/parser.py": "pass",
	"samples/readme.txt":   "not extracted",
}

// fixture is a working directory with a cached toolset archive.
type fixture struct {
	wd     string
	cache  string
	cfg    *config.Config
	bc     build.Context
	runner *fakeRunner
	out    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		wd:     t.TempDir(),
		cache:  t.TempDir(),
		cfg:    config.Default(),
		runner: &fakeRunner{},
		out:    &bytes.Buffer{},
	}
	f.cfg.Paths.CacheDir = f.cache
	f.cfg.Toolset.Modules = []string{}

	data := zipBytes(t, toolsetEntries)
	require.NoError(t, os.WriteFile(cachePath(f.cache, f.cfg.Toolset.URL), data, 0o600))
	f.cfg.Toolset.Checksum = md5Of(t, data)

	bc, err := build.NewContext(f.wd, "build", "1.2")
	require.NoError(t, err)
	f.bc = bc
	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Config: f.cfg,
		Runner: f.runner,
		Stdout: f.out,
		Now:    func() time.Time { return time.Unix(1300000000, 0) },
	}
}

// fakeRunner records commands. onRun may inspect the filesystem or fail.
type fakeRunner struct {
	missing map[string]bool
	onRun   func(cmd process.Command) error
	ran     []process.Command
}

func (r *fakeRunner) LookPath(name string) (string, error) {
	if r.missing[name] {
		return "", exec.ErrNotFound
	}
	return name, nil
}

func (r *fakeRunner) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	r.ran = append(r.ran, cmd)
	if r.onRun != nil {
		return process.Result{}, r.onRun(cmd)
	}
	return process.Result{}, nil
}

// writeIndex simulates the documentation generator writing its output.
func writeIndex(cmd process.Command) error {
	for _, a := range cmd.Args {
		if out, ok := strings.CutPrefix(a, "--outputdir="); ok {
			if err := os.MkdirAll(out, 0o750); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(out, "index.html"), []byte("<html><head><title>Jarmon API</title></head></html>"), 0o600)
		}
	}
	return nil
}

// fakeExporter writes a fixed tree.
type fakeExporter struct {
	files     map[string]string
	exportErr error
	rev       vcs.Revision
	exported  bool
}

func (e *fakeExporter) Export(_ context.Context, _, dest string) error {
	if e.exportErr != nil {
		return e.exportErr
	}
	for name, content := range e.files {
		p := filepath.Join(dest, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			return err
		}
	}
	e.exported = true
	return nil
}

func (e *fakeExporter) Revision(context.Context, string) (vcs.Revision, error) {
	return e.rev, nil
}

type fakeRecorder struct {
	durations map[string]int
	results   map[string]metrics.ResultLabel
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{durations: map[string]int{}, results: map[string]metrics.ResultLabel{}}
}

func (r *fakeRecorder) ObserveStepDuration(step string, _ time.Duration) {
	r.durations[step]++
}

func (r *fakeRecorder) IncStepResult(step string, res metrics.ResultLabel) {
	r.results[step] = res
}

func (r *fakeRecorder) AddFetchedBytes(int64) {}
func (r *fakeRecorder) IncCacheLookup(bool)   {}
