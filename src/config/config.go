package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".lintconf.yml"

// Config is the top-level lintconf configuration.
type Config struct {
	Version int `yaml:"version"`

	// Fragments are the root references resolved for every file, least
	// specific first: paths on disk, preset names or plugin: references.
	Fragments []string `yaml:"fragments"`

	Presets SourcesConfig `yaml:"presets"`
	Plugins SourcesConfig `yaml:"plugins"`
	Resolve ResolveConfig `yaml:"resolve"`
	Log     LogConfig     `yaml:"log"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return defaults(), nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:   1,
		Fragments: []string{".eslintrc.yaml"},
		Presets:   DefaultSourcesConfig(),
		Plugins:   DefaultSourcesConfig(),
		Resolve:   DefaultResolveConfig(),
		Log:       DefaultLogConfig(),
	}
}
