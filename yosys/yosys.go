// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package yosys checks that generated Verilog is synthesizable by running the
// yosys open synthesis suite on it. It can also run generated designs in the
// yosys simulator.
//
package yosys

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/verilog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when the yosys executable cannot be found.
//
var ErrNotFound = errors.New("yosys executable not found")

// Config configures a Validator.
//
type Config struct {
	// Path of the yosys executable, looked up in PATH if not absolute.
	// Defaults to "yosys".
	Path string `yaml:"path"`
	// Timeout bounds a single yosys run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// WorkDir is where Verilog sources are written. A temporary directory,
	// removed after each run, is used if empty.
	WorkDir string `yaml:"work_dir"`
}

// A Validator runs yosys on designs.
//
type Validator struct {
	cfg Config
	log logrus.FieldLogger
}

// New returns a new Validator. A nil logger defaults to the logrus standard
// logger.
//
func New(cfg Config, log logrus.FieldLogger) *Validator {
	if cfg.Path == "" {
		cfg.Path = "yosys"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Validator{cfg: cfg, log: log.WithField("tool", "yosys")}
}

// Available reports whether the yosys executable can be found.
//
func (v *Validator) Available() bool {
	_, err := exec.LookPath(v.cfg.Path)
	return err == nil
}

// Script returns the yosys commands used to validate the design in file with
// the given top-level module.
//
func Script(file, top string) string {
	return "read_verilog " + file + "; hierarchy -check -top " + top + "; proc; check -assert"
}

// Validate renders m as Verilog and checks it with yosys. A design rejected by
// yosys yields a *rtl.ValidationError carrying the tool output verbatim.
//
func (v *Validator) Validate(ctx context.Context, m *rtl.Module) error {
	d, err := verilog.Generate(m)
	if err != nil {
		return err
	}
	return v.ValidateSource(ctx, d.Top, d.String())
}

// ValidateSource checks Verilog source src whose top-level module is top.
//
func (v *Validator) ValidateSource(ctx context.Context, top, src string) error {
	err := v.run(ctx, top, src, func(file string) string { return Script(file, top) }, nil)
	if err == nil {
		v.log.WithField("top", top).Debug("design accepted")
	}
	return err
}

// SimFile is the name of the VCD file written by Simulate in the work
// directory.
//
const SimFile = "sim.vcd"

// SimScript returns the yosys commands used to simulate the design in file for
// the given number of cycles of clock.
//
func SimScript(file, top, clock string, cycles int) string {
	return "read_verilog " + file + "; hierarchy -check -top " + top + "; proc; flatten; " +
		"sim -zinit -clock " + clock + " -n " + strconv.Itoa(cycles) + " -vcd " + SimFile
}

// Simulate renders m as Verilog and runs it in the yosys simulator for the
// given number of cycles of its clock input. It returns the VCD trace written
// by yosys.
//
func (v *Validator) Simulate(ctx context.Context, m *rtl.Module, clock string, cycles int) ([]byte, error) {
	if m.Port(clock) == nil {
		return nil, errors.Errorf("no clock input %s in %s", clock, m.Name())
	}
	if cycles < 1 {
		return nil, errors.Errorf("invalid cycle count %d", cycles)
	}
	d, err := verilog.Generate(m)
	if err != nil {
		return nil, err
	}
	var trace []byte
	err = v.run(ctx, d.Top, d.String(),
		func(file string) string { return SimScript(file, d.Top, clock, cycles) },
		func(dir string) (err error) {
			trace, err = os.ReadFile(filepath.Join(dir, SimFile))
			return errors.Wrap(err, "reading simulation trace")
		})
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// run writes src to the work directory and runs the yosys script built by
// script. done, if not nil, is called before the work directory is removed.
//
func (v *Validator) run(ctx context.Context, top, src string, script func(file string) string, done func(dir string) error) error {
	bin, err := exec.LookPath(v.cfg.Path)
	if err != nil {
		return errors.Wrap(ErrNotFound, v.cfg.Path)
	}

	dir := v.cfg.WorkDir
	if dir == "" {
		if dir, err = os.MkdirTemp("", "rtl-yosys-"); err != nil {
			return errors.Wrap(err, "creating work directory")
		}
		defer os.RemoveAll(dir)
	}
	file := filepath.Join(dir, top+".v")
	if err = os.WriteFile(file, []byte(src), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}

	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-q", "-p", script(file))
	cmd.Dir = dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	log := v.log.WithField("top", top)
	log.Debugf("running %s", cmd.String())
	start := time.Now()
	err = cmd.Run()
	log = log.WithField("elapsed", time.Since(start))
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "yosys")
	}
	if err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return errors.Wrap(err, "running yosys")
		}
		log.Warn("design rejected")
		return &rtl.ValidationError{Name: top, Output: out.String()}
	}
	if done != nil {
		return done(dir)
	}
	return nil
}
