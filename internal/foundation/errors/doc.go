// Package errors provides the classified error primitives used across jarmonbuild.
//
// Every fatal fault raised by a build step is a ClassifiedError. The category
// decides the process exit code and the context map carries the details shown
// to the user (paths, digests, exit statuses).
//
// Key features:
//   - ErrorCategory: Broad error classification (usage, build, integrity, archive, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, cause and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit code selection and user-facing formatting
//
// Example usage:
//
//	err := errors.IntegrityError("toolset checksum mismatch").
//		WithContext("path", cachePath).
//		WithContext("expected", want.String()).
//		WithContext("actual", got.String()).
//		WithCause(mismatch).
//		Build()
package errors
