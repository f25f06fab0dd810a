// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"io"
	"time"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/internal/design"
	"github.com/db47h/rtl/vcd"
	"github.com/db47h/rtl/verilog"
	"github.com/db47h/rtl/yosys"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verilogCmd = &cobra.Command{
	Use:   "verilog",
	Short: "Generate the Verilog source of a design",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fail(err)
		}
		w, done, err := output()
		if err != nil {
			return fail(err)
		}
		err = generate(w, cfg)
		if cerr := done(); err == nil {
			err = cerr
		}
		if err != nil {
			return fail(err)
		}
		return nil
	},
}

func generate(w io.Writer, cfg *design.Config) error {
	top, err := design.Build(&cfg.Design)
	if err != nil {
		return err
	}
	d, err := verilog.Generate(top.Module)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"top": d.Top, "units": len(d.Units)}).Info("generated")
	_, err = d.WriteTo(w)
	return err
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Simulate a design with the configured stimulus and write a VCD trace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fail(err)
		}
		w, done, err := output()
		if err != nil {
			return fail(err)
		}
		err = simulate(w, cfg, logrus.StandardLogger())
		if cerr := done(); err == nil {
			err = cerr
		}
		if err != nil {
			return fail(err)
		}
		return nil
	},
}

func simulate(w io.Writer, cfg *design.Config, log logrus.FieldLogger) error {
	top, err := design.Build(&cfg.Design)
	if err != nil {
		return err
	}
	s, err := rtl.NewSimulation(top.Module,
		rtl.WithConfig(cfg.Sim),
		rtl.WithLogger(log),
		rtl.WithTracer(vcd.NewWriter(w, vcd.Options{Timescale: cfg.Trace.Timescale})))
	if err != nil {
		return err
	}
	start := time.Now()
	r := &design.Runner{Top: top, Sim: s, Log: log}
	err = r.Run(cfg.Stimulus)
	events, ferr := s.Finish()
	if err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"signals": len(s.Signals()),
		"steps":   s.Steps(),
		"events":  len(events),
		"elapsed": time.Since(start),
	}).Info("simulation complete")
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the Verilog source of a design is accepted by yosys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fail(err)
		}
		if err = validate(cmd.Context(), cfg, logrus.StandardLogger()); err != nil {
			return fail(err)
		}
		cmd.Println("ok")
		return nil
	},
}

func validate(ctx context.Context, cfg *design.Config, log logrus.FieldLogger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	top, err := design.Build(&cfg.Design)
	if err != nil {
		return err
	}
	return yosys.New(cfg.Yosys, log).Validate(ctx, top.Module)
}
