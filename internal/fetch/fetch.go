// Package fetch streams remote archives through a local cache.
//
// Fetch returns a Stream whose chunks are produced lazily. When the cache
// file exists its bytes are produced without any network access. Otherwise
// the resource is downloaded and every chunk is written to the cache file and
// yielded downstream in the same pass, so a consumer that hashes the chunks
// verifies exactly what was persisted.
//
// A failed download leaves the partially written cache file in place. A later
// run will treat it as a complete cached copy and the checksum verification
// will reject it.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/metrics"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

const (
	// DefaultChunkSize matches the 10 KiB reads used for progress reporting.
	DefaultChunkSize = 10 * 1024
	MinChunkSize     = 1024
	MaxChunkSize     = 1024 * 1024

	// progressEvery is used for progress lines when the length is unknown.
	progressEvery = 1024 * 1024
)

// ErrStreamConsumed is yielded when a Stream is iterated a second time.
var ErrStreamConsumed = errors.New("stream already consumed")

// FetchError reports a network or filesystem failure while producing a stream.
type FetchError struct {
	Op         string // get, status, read, write
	URL        string
	Path       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Op {
	case "status":
		return fmt.Sprintf("fetch %s: unexpected HTTP status %d", e.URL, e.StatusCode)
	case "read", "write":
		return fmt.Sprintf("fetch %s: %s %s: %v", e.URL, e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher produces cache-backed byte streams.
type Fetcher struct {
	client    *http.Client
	chunkSize int
	reporter  observability.Reporter
	recorder  metrics.Recorder
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client. The default has no timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithChunkSize sets the read size, clamped to [MinChunkSize, MaxChunkSize].
func WithChunkSize(n int) Option {
	return func(f *Fetcher) {
		switch {
		case n <= 0:
		case n < MinChunkSize:
			f.chunkSize = MinChunkSize
		case n > MaxChunkSize:
			f.chunkSize = MaxChunkSize
		default:
			f.chunkSize = n
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r observability.Reporter) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.reporter = r
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		chunkSize: DefaultChunkSize,
		reporter:  observability.Discard(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ChunkSize returns the configured read size.
func (f *Fetcher) ChunkSize() int { return f.chunkSize }

// Fetch returns a lazy stream of url's bytes backed by cachePath. Nothing is
// read or downloaded until the stream is iterated.
func (f *Fetcher) Fetch(ctx context.Context, url, cachePath string) *Stream {
	s := &Stream{url: url, path: cachePath}
	if info, err := os.Stat(cachePath); err == nil && info.Mode().IsRegular() {
		s.cached = true
		s.produce = func(yield func([]byte, error) bool) { f.readCached(s, yield) }
	} else {
		s.produce = func(yield func([]byte, error) bool) { f.download(ctx, s, yield) }
	}
	f.recorder.IncCacheLookup(s.cached)
	return s
}

func (f *Fetcher) readCached(s *Stream, yield func([]byte, error) bool) {
	f.reporter.Debug("Using cached copy", logfields.Path(s.path), logfields.URL(s.url))

	file, err := os.Open(s.path)
	if err != nil {
		yield(nil, &FetchError{Op: "read", URL: s.url, Path: s.path, Err: err})
		return
	}
	defer func() { _ = file.Close() }()

	f.pump(file, s, nil, -1, yield)
}

func (f *Fetcher) download(ctx context.Context, s *Stream, yield func([]byte, error) bool) {
	f.reporter.Debug("Downloading", logfields.URL(s.url), logfields.Path(s.path))

	out, err := os.Create(s.path)
	if err != nil {
		yield(nil, &FetchError{Op: "write", URL: s.url, Path: s.path, Err: err})
		return
	}
	defer func() { _ = out.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		yield(nil, &FetchError{Op: "get", URL: s.url, Path: s.path, Err: err})
		return
	}
	resp, err := f.client.Do(req)
	if err != nil {
		yield(nil, &FetchError{Op: "get", URL: s.url, Path: s.path, Err: err})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		yield(nil, &FetchError{Op: "status", URL: s.url, Path: s.path, StatusCode: resp.StatusCode})
		return
	}

	if !f.pump(resp.Body, s, out, resp.ContentLength, yield) {
		return
	}
	if err := out.Close(); err != nil {
		yield(nil, &FetchError{Op: "write", URL: s.url, Path: s.path, Err: err})
	}
}

// pump copies src in bounded chunks to yield, teeing into sink when non-nil.
// It returns false when iteration stopped early or failed.
func (f *Fetcher) pump(src io.Reader, s *Stream, sink io.Writer, total int64, yield func([]byte, error) bool) bool {
	var done, nextReport int64
	step := int64(progressEvery)
	if total > 0 {
		step = max(total/10, 1)
	}
	nextReport = step

	for {
		buf := make([]byte, f.chunkSize)
		n, rerr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if sink != nil {
				if _, werr := sink.Write(chunk); werr != nil {
					yield(nil, &FetchError{Op: "write", URL: s.url, Path: s.path, Err: werr})
					return false
				}
			}
			done += int64(n)
			f.recorder.AddFetchedBytes(int64(n))
			if sink != nil && done >= nextReport {
				f.reportProgress(s, done, total)
				nextReport += step
			}
			if !yield(chunk, nil) {
				return false
			}
		}
		if errors.Is(rerr, io.EOF) {
			return true
		}
		if rerr != nil {
			op := "get"
			if sink == nil {
				op = "read"
			}
			yield(nil, &FetchError{Op: op, URL: s.url, Path: s.path, Err: rerr})
			return false
		}
	}
}

func (f *Fetcher) reportProgress(s *Stream, done, total int64) {
	if total > 0 {
		f.reporter.Debug("Download progress",
			logfields.URL(s.url),
			logfields.Bytes(humanize.Bytes(uint64(done))+" / "+humanize.Bytes(uint64(total))))
		return
	}
	f.reporter.Debug("Download progress", logfields.URL(s.url), logfields.Bytes(humanize.Bytes(uint64(done))))
}

// Stream is a finite, single-use sequence of byte chunks.
type Stream struct {
	url      string
	path     string
	cached   bool
	consumed bool
	produce  iter.Seq2[[]byte, error]
}

// URL returns the remote location.
func (s *Stream) URL() string { return s.url }

// Path returns the cache file location.
func (s *Stream) Path() string { return s.path }

// Cached reports whether the stream is served from an existing cache file.
func (s *Stream) Cached() bool { return s.cached }

// Chunks returns the chunk sequence. Only the first iteration produces data;
// any later iteration yields ErrStreamConsumed. Yielded slices are not reused.
func (s *Stream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if s.consumed {
			yield(nil, ErrStreamConsumed)
			return
		}
		s.consumed = true
		s.produce(yield)
	}
}
