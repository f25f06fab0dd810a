// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SimConfig holds simulation parameters, loadable from YAML.
//
type SimConfig struct {
	// MaxIterations is the number of settle passes allowed on top of the
	// signal count of the design. A step that is still changing after that
	// many passes fails with a NotConvergedError.
	MaxIterations int `yaml:"max_iterations"`
	// StepTime is the amount of simulated time elapsed by each Step. Time
	// is only used to order trace records.
	StepTime uint64 `yaml:"step_time"`
}

// DefaultSimConfig returns the default simulation parameters.
//
func DefaultSimConfig() SimConfig {
	return SimConfig{MaxIterations: 64, StepTime: 1}
}

// Validate checks parameter ranges.
//
func (c SimConfig) Validate() error {
	if c.MaxIterations < 1 {
		return errors.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.StepTime == 0 {
		return errors.New("step_time must be positive")
	}
	return nil
}

// LoadSimConfig reads a YAML simulation configuration. Fields absent from the
// file keep their default value.
//
func LoadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading simulation config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing simulation config")
	}
	return cfg, cfg.Validate()
}
