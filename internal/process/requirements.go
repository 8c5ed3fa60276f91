package process

import (
	"context"
	"fmt"
	"strings"
)

// Requirement is an external program a step needs, plus modules the program
// must be able to import when it is an interpreter.
type Requirement struct {
	Program string
	Modules []string
}

// MissingError names the first unmet requirement.
type MissingError struct {
	Name string
	Err  error
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("required dependency %q is not available: %v", e.Name, e.Err)
}

func (e *MissingError) Unwrap() error { return e.Err }

// Check resolves every requirement in order and stops at the first one that
// is missing.
func Check(ctx context.Context, r Runner, reqs ...Requirement) error {
	for _, req := range reqs {
		path, err := r.LookPath(req.Program)
		if err != nil {
			return &MissingError{Name: req.Program, Err: err}
		}
		for _, mod := range req.Modules {
			probe := Command{Name: path, Args: []string{"-c", "import " + mod}}
			if _, err := r.Run(ctx, probe); err != nil {
				return &MissingError{Name: req.Program + " module " + mod, Err: err}
			}
		}
	}
	return nil
}

// String lists the program and its modules.
func (r Requirement) String() string {
	if len(r.Modules) == 0 {
		return r.Program
	}
	return r.Program + " (" + strings.Join(r.Modules, ", ") + ")"
}
