// Package checksum verifies downloaded artifacts against an expected digest.
//
// Digests are written as "algorithm:hex" (for example "md5:cd5545d2...").
// Bare hex strings are accepted and the algorithm is inferred from the length.
// These are compatibility checksums: the algorithm must match whatever the
// publisher used to compute the expected value.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"iter"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names a supported digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

var (
	// ErrChecksumMismatch indicates the computed digest does not match the expected one.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnknownAlgorithm indicates an unsupported digest algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown digest algorithm")
)

// New returns a fresh hash for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil //nolint:gosec // compatibility digest, not a security control
	case SHA1:
		return sha1.New(), nil //nolint:gosec // compatibility digest, not a security control
	case SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Digest is an algorithm-qualified hex digest. Hex is always lower case.
type Digest struct {
	Algorithm Algorithm
	Hex       string
}

// ParseDigest parses "algo:hex" or a bare hex string.
func ParseDigest(raw string) (Digest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Digest{}, errors.New("empty digest")
	}

	var alg Algorithm
	value := raw
	if name, rest, ok := strings.Cut(raw, ":"); ok {
		alg = Algorithm(strings.ToLower(name))
		value = rest
	} else {
		switch len(raw) {
		case 32:
			alg = MD5
		case 40:
			alg = SHA1
		case 64:
			alg = SHA256
		default:
			return Digest{}, fmt.Errorf("cannot infer algorithm for %d character digest %q", len(raw), raw)
		}
	}

	h, err := alg.New()
	if err != nil {
		return Digest{}, err
	}
	if !isHexDigest(value, h.Size()*2) {
		return Digest{}, fmt.Errorf("invalid %s digest %q: want %d hex characters", alg, value, h.Size()*2)
	}
	return Digest{Algorithm: alg, Hex: strings.ToLower(value)}, nil
}

// MustParseDigest is ParseDigest for package-level constants.
func MustParseDigest(raw string) Digest {
	d, err := ParseDigest(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// Of computes the digest of data.
func Of(alg Algorithm, data []byte) (Digest, error) {
	h, err := alg.New()
	if err != nil {
		return Digest{}, err
	}
	_, _ = h.Write(data)
	return Digest{Algorithm: alg, Hex: hex.EncodeToString(h.Sum(nil))}, nil
}

// String renders the digest in "algo:hex" form.
func (d Digest) String() string {
	if d.Algorithm == "" {
		return d.Hex
	}
	return string(d.Algorithm) + ":" + d.Hex
}

// IsZero reports whether d is unset.
func (d Digest) IsZero() bool { return d.Hex == "" }

// Equal compares algorithm and value (case-insensitive hex).
func (d Digest) Equal(other Digest) bool {
	return d.Algorithm == other.Algorithm && strings.EqualFold(d.Hex, other.Hex)
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler so digests can live in YAML config.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IntegrityError describes a digest mismatch for a resource on disk.
// It wraps ErrChecksumMismatch so callers can use errors.Is for classification.
type IntegrityError struct {
	Path     string
	Expected Digest
	Actual   Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Unwrap returns ErrChecksumMismatch.
func (e *IntegrityError) Unwrap() error { return ErrChecksumMismatch }

// Result is the outcome of Verify.
type Result struct {
	Expected Digest
	Actual   Digest
	Bytes    int64
}

// Match reports whether the computed digest equals the expected one.
func (r Result) Match() bool { return r.Actual.Equal(r.Expected) }

// Err returns nil on match and an *IntegrityError naming path otherwise.
func (r Result) Err(path string) error {
	if r.Match() {
		return nil
	}
	return &IntegrityError{Path: path, Expected: r.Expected, Actual: r.Actual}
}

// Verify consumes chunks incrementally and hashes them with the expected
// digest's algorithm. An error yielded by the sequence aborts verification and
// is returned as is.
func Verify(chunks iter.Seq2[[]byte, error], expected Digest) (Result, error) {
	h, err := expected.Algorithm.New()
	if err != nil {
		return Result{}, err
	}

	res := Result{Expected: expected}
	for chunk, err := range chunks {
		if err != nil {
			return res, err
		}
		n, _ := h.Write(chunk)
		res.Bytes += int64(n)
	}
	res.Actual = Digest{Algorithm: expected.Algorithm, Hex: hex.EncodeToString(h.Sum(nil))}
	return res, nil
}

func isHexDigest(value string, expectedLen int) bool {
	if expectedLen > 0 && len(value) != expectedLen {
		return false
	}
	if len(value)%2 != 0 {
		return false
	}
	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
