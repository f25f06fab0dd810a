// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package design loads router based designs and their test stimulus from YAML
// configuration files.
//
package design

import (
	"os"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/hwlib"
	"github.com/db47h/rtl/yosys"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file.
//
type Config struct {
	Design   Design        `yaml:"design"`
	Sim      rtl.SimConfig `yaml:"sim"`
	Trace    Trace         `yaml:"trace"`
	Yosys    yosys.Config  `yaml:"yosys"`
	Stimulus []Step        `yaml:"stimulus"`
}

// Design describes a bus router and the nodes attached to it.
//
type Design struct {
	// Name of the top-level module.
	Name      string `yaml:"name"`
	DataWidth int    `yaml:"data_width"`
	AddrWidth int    `yaml:"addr_width"`
	// Address map, either as explicit ranges or as a list of per-node
	// address counts.
	Ranges []hwlib.Range `yaml:"ranges"`
	Counts []uint64      `yaml:"counts"`
	// If Ports is set, every node gets an output port mapped at PortAddress
	// and the top-level module exposes the port outputs as out0, out1...
	// Otherwise the top-level module is the bare router.
	Ports       bool   `yaml:"ports"`
	PortAddress uint64 `yaml:"port_address"`
}

// Trace configures the VCD output.
//
type Trace struct {
	Timescale string `yaml:"timescale"`
}

// Default returns the default configuration.
//
func Default() Config {
	return Config{
		Design: Design{Name: "soc", DataWidth: 8, AddrWidth: 8},
		Sim:    rtl.DefaultSimConfig(),
		Trace:  Trace{Timescale: "1ns"},
	}
}

// AddressMap returns the router ranges, built from Counts if no explicit
// ranges are given.
//
func (d *Design) AddressMap() []hwlib.Range {
	if len(d.Ranges) > 0 {
		return d.Ranges
	}
	return hwlib.RangesFromCounts(d.Counts)
}

// Validate checks the configuration for consistency. Address ranges are
// checked when the router is built.
//
func (c *Config) Validate() error {
	d := &c.Design
	switch {
	case d.Name == "":
		return errors.New("design: missing name")
	case d.DataWidth < 1 || d.DataWidth > rtl.MaxWidth:
		return errors.Errorf("design: data_width must be in [1, %d], got %d", rtl.MaxWidth, d.DataWidth)
	case d.AddrWidth < 1 || d.AddrWidth >= rtl.MaxWidth:
		return errors.Errorf("design: addr_width must be in [1, %d), got %d", rtl.MaxWidth, d.AddrWidth)
	case len(d.Ranges) > 0 && len(d.Counts) > 0:
		return errors.New("design: ranges and counts are mutually exclusive")
	case len(d.Ranges) == 0 && len(d.Counts) == 0:
		return errors.New("design: no address map")
	}
	if err := c.Sim.Validate(); err != nil {
		return errors.Wrap(err, "sim")
	}
	for i := range c.Stimulus {
		if err := c.Stimulus[i].validate(); err != nil {
			return errors.Wrapf(err, "stimulus step %d", i)
		}
	}
	return nil
}

// Load reads a YAML configuration file. Fields absent from the file keep their
// default value.
//
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration.
//
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
