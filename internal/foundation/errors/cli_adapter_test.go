package errors

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name:     "usage error",
			err:      UsageError("unknown subcommand").Build(),
			expected: 2,
		},
		{
			name:     "config error",
			err:      ConfigError("bad config").Build(),
			expected: 7,
		},
		{
			name:     "build error",
			err:      BuildError("generator failed").Build(),
			expected: 11,
		},
		{
			name:     "integrity error",
			err:      IntegrityError("checksum mismatch").Build(),
			expected: 13,
		},
		{
			name:     "archive error wrapped by fmt",
			err:      fmt.Errorf("step apidocs: %w", ArchiveError("corrupt zip").Build()),
			expected: 12,
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	err := IntegrityError("toolset checksum mismatch").
		WithContext("path", "/tmp/yuidoc.zip").
		WithContext("expected", "md5:aa").
		WithContext("actual", "md5:bb").
		Build()

	got := adapter.FormatError(err)
	if !strings.HasPrefix(got, "Error: toolset checksum mismatch") {
		t.Errorf("unexpected message: %q", got)
	}
	// Context keys are sorted for stable output.
	actual := strings.Index(got, "actual: md5:bb")
	expected := strings.Index(got, "expected: md5:aa")
	path := strings.Index(got, "path: /tmp/yuidoc.zip")
	if actual < 0 || expected < 0 || path < 0 || actual > expected || expected > path {
		t.Errorf("context not rendered in sorted order: %q", got)
	}

	if got := adapter.FormatError(&customError{msg: "boom"}); got != "Error: boom" {
		t.Errorf("FormatError() = %q, want %q", got, "Error: boom")
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	var out bytes.Buffer
	code := adapter.HandleError(&out, UsageError("missing subcommand").Build())
	if code != 2 {
		t.Errorf("HandleError() = %d, want 2", code)
	}
	if !strings.Contains(out.String(), "missing subcommand") {
		t.Errorf("expected message on writer, got %q", out.String())
	}
	if !strings.Contains(out.String(), "\n") || strings.Contains(out.String(), "goroutine") {
		t.Errorf("unexpected output shape: %q", out.String())
	}

	out.Reset()
	if code := adapter.HandleError(&out, nil); code != 0 || out.Len() != 0 {
		t.Errorf("nil error should be silent, got code=%d out=%q", code, out.String())
	}
}

func TestCLIErrorAdapter_HandleErrorLogsOnlyFatalWhenQuiet(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tests := []struct {
		name    string
		verbose bool
		err     error
		logged  bool
	}{
		{"build error printed once", false, BuildError("generator failed").Build(), false},
		{"usage error printed once", false, UsageError("missing subcommand").Build(), false},
		{"fatal error also logged", false, InternalError("registry broken").Fatal().Build(), true},
		{"verbose logs everything", true, BuildError("generator failed").Build(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			var out bytes.Buffer
			NewCLIErrorAdapter(tt.verbose, logger).HandleError(&out, tt.err)

			if out.Len() == 0 {
				t.Errorf("expected message on writer")
			}
			if got := logs.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (logs %q)", got, tt.logged, logs.String())
			}
		})
	}
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
