// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the settings shared by the clproute tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v2"

	"github.com/fluidicml/clproute/solver"
	"github.com/fluidicml/clproute/translator"
)

// Config is the file format. Fields left out of a file keep their defaults.
type Config struct {
	Engine     Engine     `yaml:"engine"`
	Translator Translator `yaml:"translator"`
}

// Engine configures the constraint runtime.
type Engine struct {
	Executable string   `yaml:"executable"`
	Args       []string `yaml:"args"`
	// MinVersion is the oldest accepted runtime, e.g. "8.4" or "9.0.4".
	MinVersion string `yaml:"minVersion"`
	// ProgramDir is where compiled programs are written. Empty means the
	// system temporary directory.
	ProgramDir string `yaml:"programDir,omitempty"`
}

// Translator configures program generation.
type Translator struct {
	Predicate          string   `yaml:"predicate"`
	ContinuousPrefixes []string `yaml:"continuousPrefixes"`
	BinaryPrefixes     []string `yaml:"binaryPrefixes"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Engine: Engine{
			Executable: solver.DefaultExecutable,
			Args:       append([]string(nil), solver.DefaultArgs...),
			MinVersion: solver.DefaultMinVersion.String(),
		},
		Translator: Translator{
			Predicate:          translator.DefaultPredicate,
			ContinuousPrefixes: []string{translator.DefaultContinuousPrefix},
			BinaryPrefixes:     []string{translator.DefaultBinaryPrefix},
		},
	}
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.Executable == "" {
		errs = append(errs, errors.New("engine.executable is empty"))
	}
	if _, err := semver.ParseTolerant(c.Engine.MinVersion); err != nil {
		errs = append(errs, fmt.Errorf("engine.minVersion: %w", err))
	}
	if c.Translator.Predicate == "" {
		errs = append(errs, errors.New("translator.predicate is empty"))
	}
	return errors.Join(errs...)
}

// EngineOptions returns the solver options for c.Engine.
func (c *Config) EngineOptions() ([]solver.Option, error) {
	v, err := semver.ParseTolerant(c.Engine.MinVersion)
	if err != nil {
		return nil, fmt.Errorf("engine.minVersion: %w", err)
	}
	return []solver.Option{
		solver.WithExecutable(c.Engine.Executable),
		solver.WithArgs(c.Engine.Args...),
		solver.WithMinVersion(v),
	}, nil
}

// SessionOptions returns the session options for c.Engine.
func (c *Config) SessionOptions() []solver.SessionOption {
	return []solver.SessionOption{solver.WithStore(solver.TempStore{Dir: c.Engine.ProgramDir})}
}

// TranslatorOptions returns the translator options for c.Translator.
func (c *Config) TranslatorOptions() []translator.Option {
	return []translator.Option{
		translator.WithPredicate(c.Translator.Predicate),
		translator.WithClassifier(translator.PrefixClassifier(c.Translator.ContinuousPrefixes, c.Translator.BinaryPrefixes)),
	}
}
