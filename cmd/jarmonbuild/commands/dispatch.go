// Package commands implements the jarmonbuild command line: flag parsing,
// logging setup and dispatch of the selected subcommand to its build step.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/config"
	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/metrics"
	"github.com/jarmon/jarmonbuild/internal/observability"
	"github.com/jarmon/jarmonbuild/internal/steps"
	"github.com/jarmon/jarmonbuild/internal/version"
)

// App wires the CLI to the step registry.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// NewRegistry builds the step registry from the shared dependencies.
	NewRegistry func(steps.Deps) *steps.Registry
}

// exitCode is panicked by kong's exit hook and recovered in Run.
type exitCode int

// Execute runs the command line with os.Args and the process streams.
func Execute(ctx context.Context, args []string) int {
	app := &App{Stdout: os.Stdout, Stderr: os.Stderr}
	return app.Run(ctx, args)
}

// Run parses args, dispatches to the selected step and returns the process
// exit code. It never calls os.Exit.
func (a *App) Run(ctx context.Context, args []string) (code int) {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.NewRegistry == nil {
		a.NewRegistry = steps.NewDefaultRegistry
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	// Usage errors are reported before logging is configured.
	bootstrap := errors.NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(a.Stderr, nil)))

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("build"),
		kong.Description("Build and release automation for Jarmon."),
		kong.Writers(a.Stdout, a.Stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		return bootstrap.HandleError(a.Stderr, errors.WrapError(err, errors.CategoryInternal, "invalid command line definition").Build())
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return bootstrap.HandleError(a.Stderr, usageError(err))
	}

	id, ok := selectedStep(kctx)
	if !ok {
		return bootstrap.HandleError(a.Stderr, usageError(nil).WithContext("subcommand", kctx.Command()))
	}
	return a.dispatch(ctx, cli, id)
}

func (a *App) dispatch(ctx context.Context, cli *CLI, id steps.ID) int {
	logger := slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(cli.Debug)}))
	adapter := errors.NewCLIErrorAdapter(cli.Debug, logger)

	buildID := uuid.NewString()
	reporter := observability.NewReporter(logger, buildID)
	ctx = observability.WithBuildID(ctx, buildID)

	cfg, err := loadConfig(cli)
	if err != nil {
		return adapter.HandleError(a.Stderr, err)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cli.MetricsFile != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		defer func() {
			if err := metrics.WriteTextfile(cli.MetricsFile, reg); err != nil {
				logger.Warn("Failed to write metrics", logfields.Path(cli.MetricsFile), logfields.Error(err))
			}
		}()
	}

	registry := a.NewRegistry(steps.Deps{
		Config:   cfg,
		Reporter: reporter,
		Recorder: recorder,
		Stdout:   a.Stdout,
	})
	step, ok := registry.Get(id)
	if !ok {
		return adapter.HandleError(a.Stderr, errors.UsageError("unrecognised subcommand").
			WithContext("subcommand", string(id)).
			WithContext("available", availableList(registry.List())).
			Build())
	}

	bc, err := build.NewContext(cli.WorkingDir, cfg.Paths.BuildDir, cli.versionFor(id))
	if err != nil {
		return adapter.HandleError(a.Stderr, err)
	}

	reporter.Debug("Dispatching", logfields.Step(string(id)), logfields.Path(bc.WorkingDir()))
	return adapter.HandleError(a.Stderr, step.Run(ctx, bc))
}

// selectedStep maps the parsed command path to a step ID.
func selectedStep(kctx *kong.Context) (steps.ID, bool) {
	fields := strings.Fields(kctx.Command())
	if len(fields) == 0 {
		return "", false
	}
	return steps.ParseID(fields[0])
}

func loadConfig(cli *CLI) (*config.Config, error) {
	path, required := cli.Config, true
	if path == "" {
		path, required = filepath.Join(cli.WorkingDir, config.DefaultFile), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// usageError describes bad or missing arguments and lists the subcommands.
func usageError(cause error) *errors.ClassifiedError {
	msg := "please specify a subcommand"
	if cause != nil {
		msg = cause.Error()
	}
	return errors.UsageError(msg).
		WithContext("available", availableList(steps.IDs())).
		WithContext("usage", "build [--debug] [-V BUILDVERSION] SUBCOMMAND [ARGS]").
		Build()
}

func availableList(ids []steps.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
