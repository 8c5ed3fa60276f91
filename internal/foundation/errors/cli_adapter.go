package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if classified, ok := AsClassified(err); ok {
		return a.exitCodeFromClassified(classified)
	}

	// Fallback for unclassified errors
	return 1
}

// exitCodeFromClassified maps ClassifiedError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromClassified(err *ClassifiedError) int {
	switch err.Category() {
	case CategoryUsage:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryNetwork, CategoryVCS:
		return 8 // External system error
	case CategoryInternal:
		return 10 // Internal error
	case CategoryBuild, CategoryFileSystem:
		return 11 // Build error
	case CategoryArchive:
		return 12
	case CategoryIntegrity:
		return 13
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if classified, ok := AsClassified(err); ok {
		return a.formatClassified(classified)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatClassified renders the message, the cause and the sorted context keys.
func (a *CLIErrorAdapter) formatClassified(err *ClassifiedError) string {
	var b strings.Builder
	if a.verbose {
		b.WriteString(err.Error())
	} else {
		b.WriteString("Error: ")
		b.WriteString(err.Message())
		if err.Cause() != nil {
			b.WriteString(": ")
			b.WriteString(err.Cause().Error())
		}
	}

	keys := make([]string, 0, len(err.Context()))
	for k := range err.Context() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %v", k, err.Context()[k])
	}
	return b.String()
}

// HandleError reports err on w and returns the exit code the process should use.
func (a *CLIErrorAdapter) HandleError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// shouldLog determines if an error should be logged in addition to being printed.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.Severity() == SeverityFatal
	}
	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		level := a.slogLevelFromSeverity(classified.Severity())
		attrs := []slog.Attr{
			slog.String("category", string(classified.Category())),
		}
		if classified.Cause() != nil {
			attrs = append(attrs, slog.String("cause", classified.Cause().Error()))
		}
		a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts ClassifiedError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError, SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
