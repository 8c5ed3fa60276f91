// Package steps implements the build subcommands.
//
// Each subcommand is a Step identified by a fixed ID and registered in a
// Registry. Steps receive every collaborator (reporter, fetcher, runner,
// exporter, recorder) at construction time and share nothing but the
// immutable build.Context passed to Run. Every failure is returned as a
// classified error; nothing is retried.
package steps
