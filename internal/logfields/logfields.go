package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStep       = "step"
	KeyStage      = "stage"
	KeyVersion    = "build_version"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyName       = "name"
	KeyPrefix     = "prefix"
	KeyDigest     = "digest"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyRevision   = "revision"
	KeyBytes      = "bytes"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func Prefix(p string) slog.Attr       { return slog.String(KeyPrefix, p) }
func Digest(d string) slog.Attr       { return slog.String(KeyDigest, d) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Revision(r string) slog.Attr     { return slog.String(KeyRevision, r) }
func Bytes(human string) slog.Attr    { return slog.String(KeyBytes, human) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
