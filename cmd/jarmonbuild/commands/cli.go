package commands

import (
	"github.com/alecthomas/kong"

	"github.com/jarmon/jarmonbuild/internal/steps"
)

// CLI definition & global flags.
type CLI struct {
	Config       string           `short:"c" help:"Configuration file path (default: jarmonbuild.yaml in the working directory, optional)" type:"path"`
	Debug        bool             `short:"d" help:"Print verbose debug log to stderr"`
	BuildVersion string           `short:"V" name:"build-version" help:"Specify the build version" default:"0" placeholder:"BUILDVERSION"`
	WorkingDir   string           `short:"C" name:"working-dir" help:"Project working directory" default:"." type:"path"`
	MetricsFile  string           `name:"metrics-file" help:"Write Prometheus metrics to this file when the build ends" type:"path"`
	Version      kong.VersionFlag `name:"version" help:"Show version and exit"`

	Apidocs  ApidocsCmd  `cmd:"" help:"Download the documentation generator and build the API docs"`
	Release  ReleaseCmd  `cmd:"" help:"Export the sources, build the API docs and create the release archive"`
	Testdata TestdataCmd `cmd:"" help:"Generate RRD test fixtures with rrdtool"`
	Jsdeps   JsdepsCmd   `cmd:"" help:"Download and unpack third-party JavaScript dependencies"`
}

// ApidocsCmd implements the 'apidocs' command.
type ApidocsCmd struct {
	BuildVersion string `arg:"" name:"version" optional:"" help:"Build version, overrides --build-version"`
}

// ReleaseCmd implements the 'release' command.
type ReleaseCmd struct {
	BuildVersion string `arg:"" name:"version" optional:"" help:"Build version, overrides --build-version"`
}

// TestdataCmd implements the 'testdata' command.
type TestdataCmd struct{}

// JsdepsCmd implements the 'jsdeps' command.
type JsdepsCmd struct{}

// versionFor returns the build version for the selected step. A positional
// VERSION wins over --build-version.
func (c *CLI) versionFor(id steps.ID) string {
	var positional string
	switch id {
	case steps.IDApidocs:
		positional = c.Apidocs.BuildVersion
	case steps.IDRelease:
		positional = c.Release.BuildVersion
	}
	if positional != "" {
		return positional
	}
	return c.BuildVersion
}
