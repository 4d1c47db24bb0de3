// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the plan service configuration, loaded from config.yaml.
type Config struct {
	// Port is the HTTP listen port for `plan serve`.
	Port int `yaml:"port"`

	// DataDir is the BadgerDB directory.
	DataDir string `yaml:"data_dir"`

	// Debug enables gin debug mode and request logging.
	Debug bool `yaml:"debug"`

	Log struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level"`

		// Dir enables JSON file logging when set.
		Dir string `yaml:"dir"`
	} `yaml:"log"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	cfg := Config{
		Port:    8000,
		DataDir: "plan-data",
	}
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads the YAML config at path, falling back to defaults when
// the file does not exist. A file that exists but cannot be parsed is an
// error rather than a silent fallback.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
