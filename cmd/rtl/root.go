// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/db47h/rtl/internal/design"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configFile string // design configuration file
	outFile    string // output file, stdout if empty
	logLevel   string // log verbosity level
)

var rootCmd = &cobra.Command{
	Use:           "rtl",
	Short:         "Simulate, generate and validate bus router designs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return errors.Errorf("invalid log level: %s", logLevel)
		}
		setupLog(logrus.StandardLogger(), level, os.Stderr)
		return nil
	},
}

// setupLog configures l to write to w at the given level, with colors if w
// is a terminal.
//
func setupLog(l *logrus.Logger, level logrus.Level, w io.Writer) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:   color,
		DisableColors: !color,
		FullTimestamp: !color,
	})
}

// loadConfig loads the configuration file given with --config.
func loadConfig() (*design.Config, error) {
	if configFile == "" {
		return nil, errors.New("missing configuration file (--config)")
	}
	cfg, err := design.Load(configFile)
	if err != nil {
		return nil, errors.Wrap(err, configFile)
	}
	logrus.WithFields(logrus.Fields{"config": configFile, "design": cfg.Design.Name}).Debug("configuration loaded")
	return cfg, nil
}

// output returns the --output file or stdout. The returned close function
// must be called when done writing.
//
func output() (io.Writer, func() error, error) {
	if outFile == "" || outFile == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func fail(err error) error {
	logrus.Error(err)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "design configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warning", "log level (trace, debug, info, warning, error, fatal, panic)")
	rootCmd.AddCommand(verilogCmd, simCmd, validateCmd)
	for _, c := range []*cobra.Command{verilogCmd, simCmd} {
		c.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	}
}
