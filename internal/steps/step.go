package steps

import (
	"context"
	"slices"

	"github.com/jarmon/jarmonbuild/internal/build"
)

// ID identifies a build step.
type ID string

// Canonical step IDs, also the subcommand names.
const (
	IDApidocs  ID = "apidocs"
	IDRelease  ID = "release"
	IDTestdata ID = "testdata"
	IDJsdeps   ID = "jsdeps"
)

var allIDs = []ID{IDApidocs, IDRelease, IDTestdata, IDJsdeps}

// IDs returns every step ID in canonical order.
func IDs() []ID { return slices.Clone(allIDs) }

// ParseID maps a subcommand name to its ID.
func ParseID(name string) (ID, bool) {
	id := ID(name)
	return id, slices.Contains(allIDs, id)
}

// Step is one subcommand's orchestration unit.
type Step interface {
	// ID returns the identifier the step is registered under.
	ID() ID

	// Description returns a one-line summary for help output.
	Description() string

	// Run executes the step to completion or returns the first error.
	Run(ctx context.Context, bc build.Context) error
}

// Stage names the phases inside a step, used as a log attribute.
type Stage string

const (
	StageDependencyCheck Stage = "dependency_check"
	StageEnsureDir       Stage = "ensure_dir"
	StageFetchTool       Stage = "fetch_tool"
	StageVerifyTool      Stage = "verify_tool"
	StageCleanOldOutput  Stage = "clean_old_output"
	StageExtractTool     Stage = "extract_tool"
	StageInvokeGenerator Stage = "invoke_generator"
	StageCleanup         Stage = "cleanup"

	StageExport  Stage = "export"
	StageStamp   Stage = "stamp"
	StageApidocs Stage = "apidocs"
	StagePackage Stage = "package"
)
