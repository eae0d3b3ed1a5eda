/*
Copyright 2024 The Knative Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"knative.dev/ceformat/pkg/logconfig"
	"knative.dev/ceformat/pkg/spec"
)

const defaultConfigFile = "~/.config/cejson/config.toml"

// Config holds the settings shared by every command. Flags override it.
type Config struct {
	// LogLevel is a zap level name.
	LogLevel string `toml:"log-level"`
	// SpecVersion is used by new and by format when converting.
	SpecVersion string `toml:"spec-version"`
	// Source is the default source of events built by new.
	Source string `toml:"source"`
	// Indent pretty-prints JSON output.
	Indent bool `toml:"indent"`
}

type envConfig struct {
	ConfigFile  string `envconfig:"CONFIG" default:"~/.config/cejson/config.toml"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	SpecVersion string `envconfig:"SPEC_VERSION"`
	Source      string `envconfig:"SOURCE"`
	Indent      *bool  `envconfig:"INDENT"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:    logconfig.DefaultLevel,
		SpecVersion: string(spec.V1),
	}
}

// loadConfig applies, in order, the defaults, the config file when it exists
// and the CEJSON_* environment variables.
func loadConfig() (Config, error) {
	var env envConfig
	if err := envconfig.Process("cejson", &env); err != nil {
		return Config{}, errors.Wrap(err, "failed to process env vars")
	}
	cfg := defaultConfig()
	if err := readConfigIfPresent(env.ConfigFile, &cfg); err != nil {
		return Config{}, err
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.SpecVersion != "" {
		cfg.SpecVersion = env.SpecVersion
	}
	if env.Source != "" {
		cfg.Source = env.Source
	}
	if env.Indent != nil {
		cfg.Indent = *env.Indent
	}
	return cfg, cfg.validate()
}

func readConfigIfPresent(location string, cfg *Config) error {
	configFile, err := homedir.Expand(location)
	if err != nil {
		return errors.Wrapf(err, "invalid config location %q", location)
	}
	if !fileExists(configFile) {
		return nil
	}
	return errors.Wrapf(readConfig(configFile, cfg), "reading %s", configFile)
}

// readConfig decodes a TOML config file. Unknown keys are an error.
func readConfig(configFile string, cfg *Config) error {
	r, err := os.Open(configFile)
	if err != nil {
		return err
	}
	defer r.Close()
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	return d.Decode(cfg)
}

func (c Config) validate() error {
	if err := logconfig.ValidateLevel(c.LogLevel); err != nil {
		return err
	}
	_, err := spec.Lookup(c.SpecVersion)
	return err
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
