// Package config loads jarmonbuild's optional YAML configuration.
//
// Every field has a built-in default matching the Jarmon project layout, so a
// missing default config file is not an error. Values may reference
// environment variables (${VAR}); .env and .env.local are loaded first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jarmon/jarmonbuild/internal/checksum"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "jarmonbuild.yaml"

// Config is the complete build configuration.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Paths    PathsConfig    `yaml:"paths"`
	Toolset  ToolsetConfig  `yaml:"toolset"`
	Fetch    FetchConfig    `yaml:"fetch"`
	JSDeps   []JSDependency `yaml:"jsdeps,omitempty"`
	TestData TestDataConfig `yaml:"testdata"`
}

// ProjectConfig names the project being released.
type ProjectConfig struct {
	// Name is the archive basename.
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// PathsConfig holds locations relative to the working directory unless absolute.
// DocsOutput is relative to the build directory and VersionFile to the
// exported source tree.
type PathsConfig struct {
	BuildDir     string `yaml:"build_dir"`
	Source       string `yaml:"source"`
	Template     string `yaml:"template"`
	DocsOutput   string `yaml:"docs_output"`
	VersionFile  string `yaml:"version_file"`
	CacheDir     string `yaml:"cache_dir,omitempty"`
	DistDir      string `yaml:"dist_dir,omitempty"`
	TestData     string `yaml:"testdata"`
	Dependencies string `yaml:"dependencies"`
}

// ToolsetConfig describes the documentation generator archive. Root is the
// archive folder extracted into the build directory and Script is the
// generator entry point relative to Root.
type ToolsetConfig struct {
	URL         string          `yaml:"url"`
	Checksum    checksum.Digest `yaml:"checksum"`
	Root        string          `yaml:"root"`
	Script      string          `yaml:"script"`
	Interpreter string          `yaml:"interpreter"`
	Modules     []string        `yaml:"modules,omitempty"`
}

// FetchConfig tunes the cache-aware fetcher.
type FetchConfig struct {
	ChunkSize int `yaml:"chunk_size,omitempty"`
}

// JSDependency is a JavaScript library archive unpacked by the jsdeps step.
type JSDependency struct {
	Name     string          `yaml:"name"`
	URL      string          `yaml:"url"`
	Checksum checksum.Digest `yaml:"checksum"`
	Prefix   string          `yaml:"prefix"`
}

// TestDataConfig drives the RRD fixture generation.
type TestDataConfig struct {
	RRDTool string `yaml:"rrdtool"`
	Start   int64  `yaml:"start"`
	Step    int    `yaml:"step"`
	Samples int    `yaml:"samples"`
}

// Load reads path. A missing file yields the defaults unless required is set.
func Load(path string, required bool) (*Config, error) {
	if err := loadEnvFile(); err != nil && !errors.Is(err, errNoEnvFile) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
