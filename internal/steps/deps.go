package steps

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/config"
	"github.com/jarmon/jarmonbuild/internal/fetch"
	"github.com/jarmon/jarmonbuild/internal/metrics"
	"github.com/jarmon/jarmonbuild/internal/observability"
	"github.com/jarmon/jarmonbuild/internal/process"
	"github.com/jarmon/jarmonbuild/internal/vcs"
)

// Fetcher produces cache-backed byte streams.
type Fetcher interface {
	Fetch(ctx context.Context, url, cachePath string) *fetch.Stream
}

// Deps are the collaborators shared by every step.
type Deps struct {
	Config   *config.Config
	Reporter observability.Reporter
	Fetcher  Fetcher
	Runner   process.Runner
	Exporter vcs.Exporter
	Recorder metrics.Recorder

	// Stdout receives user-facing results such as the release archive path.
	Stdout io.Writer
	Now    func() time.Time
}

// withDefaults fills unset collaborators with production implementations.
func (d Deps) withDefaults() Deps {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Reporter == nil {
		d.Reporter = observability.Discard()
	}
	if d.Recorder == nil {
		d.Recorder = metrics.NoopRecorder{}
	}
	if d.Fetcher == nil {
		d.Fetcher = fetch.New(
			fetch.WithChunkSize(d.Config.Fetch.ChunkSize),
			fetch.WithReporter(d.Reporter),
			fetch.WithRecorder(d.Recorder),
		)
	}
	if d.Runner == nil {
		d.Runner = process.NewExecRunner(d.Reporter)
	}
	if d.Exporter == nil {
		d.Exporter = vcs.NewGitExporter(d.Reporter)
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// forStep scopes the reporter to one step.
func (d Deps) forStep(id ID) (Deps, *build.Dirs) {
	d.Reporter = observability.ForStep(d.Reporter, string(id))
	return d, build.NewDirs(d.Reporter)
}

// cacheDir returns the configured fetch cache directory.
func (d Deps) cacheDir(bc build.Context) string {
	if d.Config.Paths.CacheDir == "" {
		return os.TempDir()
	}
	return bc.Path(d.Config.Paths.CacheDir)
}

// NewDefaultRegistry registers all four steps, each wrapped with logging and
// timing middleware.
func NewDefaultRegistry(d Deps) *Registry {
	d = d.withDefaults()
	mw := []Middleware{Logging(d.Reporter), Timing(d.Recorder)}

	apidocs := NewApidocs(d)
	reg := NewRegistry()
	reg.Register(Chain(apidocs, mw...))
	reg.Register(Chain(NewRelease(d, apidocs), mw...))
	reg.Register(Chain(NewTestdata(d), mw...))
	reg.Register(Chain(NewJsdeps(d), mw...))
	return reg
}
