package vcs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const stampHeader = "# Code generated by jarmonbuild. DO NOT EDIT.\n"

// Stamp is the version record written into a release tree.
type Stamp struct {
	Revision     Revision  `yaml:",inline"`
	BuildDate    time.Time `yaml:"build_date"`
	BuildVersion string    `yaml:"build_version"`
}

// WriteStamp writes s as YAML to path, creating parent directories.
func WriteStamp(path string, s Stamp) error {
	var buf bytes.Buffer
	buf.WriteString(stampHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode version stamp: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode version stamp: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create stamp directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write version stamp: %w", err)
	}
	return nil
}

// ReadStamp parses a stamp written by WriteStamp.
func ReadStamp(path string) (Stamp, error) {
	// #nosec G304 -- path is a build artifact location
	data, err := os.ReadFile(path)
	if err != nil {
		return Stamp{}, err
	}
	var s Stamp
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Stamp{}, fmt.Errorf("parse version stamp: %w", err)
	}
	return s, nil
}
