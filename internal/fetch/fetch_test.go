package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7 % 251)
	}
	return b
}

func countingServer(t *testing.T, body []byte, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func collect(t *testing.T, s *Stream) ([][]byte, error) {
	t.Helper()
	var chunks [][]byte
	for chunk, err := range s.Chunks() {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestFetch_CachedCopyMakesNoNetworkCalls(t *testing.T) {
	srv, hits := countingServer(t, []byte("remote bytes"), http.StatusOK)

	cachePath := filepath.Join(t.TempDir(), "yuidoc_1.0.0b1.zip")
	prior := payload(25 * 1024)
	require.NoError(t, os.WriteFile(cachePath, prior, 0o600))

	s := New().Fetch(context.Background(), srv.URL+"/yuidoc_1.0.0b1.zip", cachePath)
	assert.True(t, s.Cached())

	chunks, err := collect(t, s)
	require.NoError(t, err)
	assert.Equal(t, prior, bytes.Join(chunks, nil))
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetch_DownloadPersistsYieldedChunksInOrder(t *testing.T) {
	body := payload(25*1024 + 17)
	srv, hits := countingServer(t, body, http.StatusOK)

	cachePath := filepath.Join(t.TempDir(), "flot.zip")
	s := New(WithChunkSize(MinChunkSize)).Fetch(context.Background(), srv.URL, cachePath)
	assert.False(t, s.Cached())

	chunks, err := collect(t, s)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), MinChunkSize)
	}

	onDisk, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, bytes.Join(chunks, nil), onDisk)
	assert.Equal(t, body, onDisk)
	assert.Equal(t, int32(1), hits.Load())

	// A second fetch is served from the cache.
	again := New().Fetch(context.Background(), srv.URL, cachePath)
	assert.True(t, again.Cached())
	chunks, err = collect(t, again)
	require.NoError(t, err)
	assert.Equal(t, body, bytes.Join(chunks, nil))
	assert.Equal(t, int32(1), hits.Load())
}

func TestStream_IsNotRestartable(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(cachePath, []byte("abc"), 0o600))

	s := New().Fetch(context.Background(), "http://unused.invalid/a.zip", cachePath)
	_, err := collect(t, s)
	require.NoError(t, err)

	_, err = collect(t, s)
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestFetch_HTTPErrorStatus(t *testing.T) {
	srv, _ := countingServer(t, []byte("not here"), http.StatusNotFound)

	cachePath := filepath.Join(t.TempDir(), "missing.zip")
	_, err := collect(t, New().Fetch(context.Background(), srv.URL, cachePath))
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "status", fe.Op)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)

	// The cache file created before the request is left behind.
	_, statErr := os.Stat(cachePath)
	assert.NoError(t, statErr)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := collect(t, New().Fetch(context.Background(), url, filepath.Join(t.TempDir(), "x.zip")))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "get", fe.Op)
}

func TestFetch_UnwritableCachePath(t *testing.T) {
	srv, hits := countingServer(t, []byte("x"), http.StatusOK)

	cachePath := filepath.Join(t.TempDir(), "no", "such", "dir", "x.zip")
	_, err := collect(t, New().Fetch(context.Background(), srv.URL, cachePath))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "write", fe.Op)
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetch_EarlyBreakStopsDownload(t *testing.T) {
	body := payload(8 * 1024)
	srv, _ := countingServer(t, body, http.StatusOK)

	cachePath := filepath.Join(t.TempDir(), "partial.zip")
	s := New(WithChunkSize(MinChunkSize)).Fetch(context.Background(), srv.URL, cachePath)
	for range s.Chunks() {
		break
	}

	onDisk, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Less(t, len(onDisk), len(body))
}

func TestWithChunkSize_Clamps(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, New(WithChunkSize(0)).ChunkSize())
	assert.Equal(t, MinChunkSize, New(WithChunkSize(10)).ChunkSize())
	assert.Equal(t, MaxChunkSize, New(WithChunkSize(10*MaxChunkSize)).ChunkSize())
	assert.Equal(t, 4096, New(WithChunkSize(4096)).ChunkSize())
}
