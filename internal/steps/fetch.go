package steps

import (
	"context"
	stderrors "errors"
	"path"
	"path/filepath"

	"github.com/jarmon/jarmonbuild/internal/checksum"
	"github.com/jarmon/jarmonbuild/internal/fetch"
	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

// cachePath is <cacheDir>/<basename of url>.
func cachePath(cacheDir, url string) string {
	return filepath.Join(cacheDir, path.Base(url))
}

// fetchVerified streams url through the cache at dest and verifies the bytes
// against expected in the same pass. A mismatch is always fatal.
func fetchVerified(ctx context.Context, f Fetcher, r observability.Reporter, url, dest string, expected checksum.Digest) error {
	stream := f.Fetch(ctx, url, dest)

	res, err := checksum.Verify(stream.Chunks(), expected)
	if err != nil {
		return classifyFetch(err, stream)
	}
	if err := res.Err(dest); err != nil {
		return errors.WrapError(err, errors.CategoryIntegrity, "checksum verification failed").
			WithContext("path", dest).
			WithContext("expected", res.Expected.String()).
			WithContext("actual", res.Actual.String()).
			Build()
	}

	r.Debug("Checksum verified",
		logfields.Path(dest),
		logfields.Digest(res.Actual.String()),
		"cached", stream.Cached())
	return nil
}

func classifyFetch(err error, stream *fetch.Stream) error {
	var fe *fetch.FetchError
	if stderrors.As(err, &fe) {
		category := errors.CategoryNetwork
		if fe.Op == "write" || stream.Cached() {
			category = errors.CategoryFileSystem
		}
		b := errors.WrapError(err, category, "failed to fetch resource").
			WithContext("url", fe.URL).
			WithContext("path", fe.Path)
		if fe.StatusCode != 0 {
			b = b.WithContext("status", fe.StatusCode)
		}
		return b.Build()
	}
	return errors.WrapError(err, errors.CategoryInternal, "failed to verify resource").
		WithContext("url", stream.URL()).
		Build()
}
