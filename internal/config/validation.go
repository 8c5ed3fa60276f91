package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error

	if strings.ContainsAny(c.Project.Name, `/\`) {
		errs = append(errs, fmt.Errorf("project.name %q must not contain path separators", c.Project.Name))
	}
	if !filepath.IsAbs(c.Paths.BuildDir) && !isSubdir(c.Paths.BuildDir) {
		errs = append(errs, fmt.Errorf("paths.build_dir %q must be a directory inside the working directory", c.Paths.BuildDir))
	}
	if !isSubdir(c.Paths.DocsOutput) {
		errs = append(errs, fmt.Errorf("paths.docs_output %q must be a directory inside the build directory", c.Paths.DocsOutput))
	}
	if !isSubdir(c.Paths.VersionFile) {
		errs = append(errs, fmt.Errorf("paths.version_file %q must be relative to the exported tree", c.Paths.VersionFile))
	}
	if !isSubdir(c.Toolset.Root) {
		errs = append(errs, fmt.Errorf("toolset.root %q must be a directory inside the build directory", c.Toolset.Root))
	}
	if c.Fetch.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("fetch.chunk_size must not be negative"))
	}
	if c.TestData.Step <= 0 || c.TestData.Samples <= 0 {
		errs = append(errs, fmt.Errorf("testdata.step and testdata.samples must be positive"))
	}

	seen := map[string]bool{}
	for i, dep := range c.JSDeps {
		switch {
		case dep.Name == "":
			errs = append(errs, fmt.Errorf("jsdeps[%d]: name is required", i))
		case seen[dep.Name]:
			errs = append(errs, fmt.Errorf("jsdeps[%d]: duplicate name %q", i, dep.Name))
		}
		seen[dep.Name] = true
		if dep.URL == "" {
			errs = append(errs, fmt.Errorf("jsdeps[%d]: url is required", i))
		}
		if dep.Checksum.IsZero() {
			errs = append(errs, fmt.Errorf("jsdeps[%d]: checksum is required", i))
		}
		if dep.Prefix == "" {
			errs = append(errs, fmt.Errorf("jsdeps[%d]: prefix is required", i))
		} else if !isSubdir(dep.Prefix) {
			errs = append(errs, fmt.Errorf("jsdeps[%d]: prefix %q must name a directory inside paths.dependencies", i, dep.Prefix))
		}
	}
	return errors.Join(errs...)
}

// isSubdir reports whether p, a slash or OS separated relative path, names
// something strictly below the directory it is joined to.
func isSubdir(p string) bool {
	p = filepath.FromSlash(p)
	return filepath.IsLocal(p) && filepath.Clean(p) != "."
}
