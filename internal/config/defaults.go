package config

import "github.com/jarmon/jarmonbuild/internal/checksum"

const (
	DefaultProjectName  = "jarmon"
	DefaultProjectTitle = "Jarmon"
	DefaultProjectURL   = "http://www.launchpad.net/jarmon"

	DefaultToolsetURL      = "http://yuilibrary.com/downloads/yuidoc/yuidoc_1.0.0b1.zip"
	DefaultToolsetChecksum = "md5:cd5545d2dec8f7afe3d18e793538162c"
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values only.
func (c *Config) applyDefaults() {
	setDefault(&c.Project.Name, DefaultProjectName)
	setDefault(&c.Project.Title, DefaultProjectTitle)
	setDefault(&c.Project.URL, DefaultProjectURL)

	setDefault(&c.Paths.BuildDir, "build")
	setDefault(&c.Paths.Source, "jarmon")
	setDefault(&c.Paths.Template, "jarmonbuild/yuidoc_template")
	setDefault(&c.Paths.DocsOutput, "docs/apidocs")
	setDefault(&c.Paths.VersionFile, "jarmonbuild/version_info.yaml")
	setDefault(&c.Paths.TestData, "jarmon/testdata")
	setDefault(&c.Paths.Dependencies, "dependencies")

	setDefault(&c.Toolset.URL, DefaultToolsetURL)
	if c.Toolset.Checksum.IsZero() {
		c.Toolset.Checksum = checksum.MustParseDigest(DefaultToolsetChecksum)
	}
	setDefault(&c.Toolset.Root, "yuidoc")
	setDefault(&c.Toolset.Script, "bin/yuidoc.py")
	setDefault(&c.Toolset.Interpreter, "python")
	if c.Toolset.Modules == nil {
		c.Toolset.Modules = []string{"pygments", "Cheetah"}
	}

	setDefault(&c.TestData.RRDTool, "rrdtool")
	if c.TestData.Start == 0 {
		c.TestData.Start = 1300000000
	}
	if c.TestData.Step == 0 {
		c.TestData.Step = 10
	}
	if c.TestData.Samples == 0 {
		c.TestData.Samples = 20
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
