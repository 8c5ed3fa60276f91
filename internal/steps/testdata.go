package steps

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jarmon/jarmonbuild/internal/build"
	"github.com/jarmon/jarmonbuild/internal/foundation/errors"
	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/process"
)

// RRDFile is the fixture written by the testdata step.
const RRDFile = "rrd_file.rrd"

// Testdata generates the RRD fixture used by the JavaScript test suite.
type Testdata struct {
	deps Deps
	dirs *build.Dirs
}

// NewTestdata creates the testdata step.
func NewTestdata(d Deps) *Testdata {
	d, dirs := d.withDefaults().forStep(IDTestdata)
	return &Testdata{deps: d, dirs: dirs}
}

func (s *Testdata) ID() ID { return IDTestdata }

func (s *Testdata) Description() string {
	return "Generate RRD test fixtures with rrdtool"
}

func (s *Testdata) Run(ctx context.Context, bc build.Context) error {
	td := s.deps.Config.TestData

	if err := process.Check(ctx, s.deps.Runner, process.Requirement{Program: td.RRDTool}); err != nil {
		return dependencyError(err)
	}

	dir := bc.Path(s.deps.Config.Paths.TestData)
	if _, err := s.dirs.Ensure(dir); err != nil {
		return err
	}

	file := filepath.Join(dir, RRDFile)
	if err := os.Remove(file); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove old fixture").
			WithContext("path", file).
			Build()
	}

	for _, args := range [][]string{createArgs(file, td.Start, td.Step, td.Samples), updateArgs(file, td.Start, td.Step, td.Samples)} {
		cmd := process.Command{Name: td.RRDTool, Args: args, Dir: bc.WorkingDir()}
		if _, err := s.deps.Runner.Run(ctx, cmd); err != nil {
			return commandError(err, "rrdtool failed")
		}
	}

	s.deps.Reporter.Info("Generated test data", logfields.Path(file))
	return nil
}

// createArgs defines one GAUGE data source with two averaging archives. The
// database starts one step before the first sample.
func createArgs(file string, start int64, step, samples int) []string {
	return []string{
		"create", file,
		"--start", strconv.FormatInt(start-int64(step), 10),
		"--step", strconv.Itoa(step),
		fmt.Sprintf("DS:speed:GAUGE:%d:U:U", 2*step),
		fmt.Sprintf("RRA:AVERAGE:0.5:1:%d", samples),
		fmt.Sprintf("RRA:AVERAGE:0.5:5:%d", samples),
	}
}

// updateArgs writes samples deterministic values, start+step*i:i.
func updateArgs(file string, start int64, step, samples int) []string {
	args := make([]string, 0, samples+2)
	args = append(args, "update", file)
	for i := range samples {
		args = append(args, fmt.Sprintf("%d:%d", start+int64(step*i), i))
	}
	return args
}
