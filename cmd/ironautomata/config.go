package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig holds default flag values loadable from --config, so a
// deployment can pin its compile settings once instead of repeating them
// on every invocation.
type fileConfig struct {
	IDWidth        int     `yaml:"id_width"`
	AlignTo        int     `yaml:"align_to"`
	HighNodeWeight float64 `yaml:"high_node_weight"`
}

func loadFileConfig(path string) (fileConfig, error) {
	cfg := fileConfig{AlignTo: 1, HighNodeWeight: 1.0}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}

	return cfg, nil
}
