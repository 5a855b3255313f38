// Package config loads the optional ceprep.yml defaults file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "ceprep.yml"

// Config holds defaults for command flags. Flags given on the command line win.
type Config struct {
	Namespace    string `yaml:"namespace"`
	IgnoreSchema string `yaml:"ignoreSchema"`
	Description  string `yaml:"description"`
	LogLevel     string `yaml:"logLevel"`
	LogFormat    string `yaml:"logFormat"`
}

// Load reads the config file at path. An empty path falls back to DefaultFile, which
// may be absent; an explicitly given file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes config content. Unknown keys are rejected.
func Parse(content []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return cfg, nil
}
