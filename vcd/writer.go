// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd writes simulation traces in the Value Change Dump format read by
// waveform viewers such as GTKWave.
//
// The output is deterministic: it carries no date and identifiers are derived
// from pin numbers, so that two identical simulations produce identical files.
//
package vcd

import (
	"bufio"
	"io"
	"strconv"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
)

// Options configures a Writer.
//
type Options struct {
	// Timescale is the duration of one simulation time unit, "1ns" if empty.
	Timescale string `yaml:"timescale"`
	// Version is written in the $version section, "rtl" if empty.
	Version string `yaml:"version"`
}

// Writer is an rtl.Tracer that writes VCD records to an io.Writer.
//
// Errors are sticky: once a write has failed, all subsequent calls return the
// same *rtl.IOError.
//
type Writer struct {
	w      *bufio.Writer
	opts   Options
	ids    []string
	widths []int
	time   uint64
	begun  bool
	err    error
}

// NewWriter returns a new Writer writing to w. Output is buffered until
// Close.
//
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Timescale == "" {
		opts.Timescale = "1ns"
	}
	if opts.Version == "" {
		opts.Version = "rtl"
	}
	return &Writer{w: bufio.NewWriter(w), opts: opts}
}

// Identifier returns the VCD identifier code for pin n. Codes use the
// printable ASCII characters '!' to '~'.
//
func Identifier(n int) string {
	var b []byte
	for {
		b = append(b, byte('!'+n%94))
		n /= 94
		if n == 0 {
			return string(b)
		}
	}
}

func (w *Writer) print(ss ...string) {
	if w.err != nil {
		return
	}
	for _, s := range ss {
		if _, err := w.w.WriteString(s); err != nil {
			w.err = &rtl.IOError{Op: "vcd write", Err: err}
			return
		}
	}
}

func (w *Writer) value(id int, v rtl.Bits) {
	if w.widths[id] == 1 {
		w.print(strconv.FormatUint(v.Uint64()&1, 10), w.ids[id], "\n")
		return
	}
	w.print("b", v.BinaryString(), " ", w.ids[id], "\n")
}

type scope struct {
	name     string
	vars     []rtl.TraceSignal
	children []*scope
}

func (s *scope) child(name string) *scope {
	for _, c := range s.children {
		if c.name == name {
			return c
		}
	}
	c := &scope{name: name}
	s.children = append(s.children, c)
	return c
}

func (w *Writer) scope(s *scope) {
	w.print("$scope module ", s.name, " $end\n")
	for _, v := range s.vars {
		w.print("$var wire ", strconv.Itoa(v.Width), " ", w.ids[v.ID], " ", v.Name, " $end\n")
	}
	for _, c := range s.children {
		w.scope(c)
	}
	w.print("$upscope $end\n")
}

// Begin implements rtl.Tracer. It writes the VCD header and the initial value
// of every signal at time 0.
//
func (w *Writer) Begin(sigs []rtl.TraceSignal) error {
	if w.begun {
		return errors.New("vcd: Begin called twice")
	}
	w.begun = true
	w.ids = make([]string, len(sigs))
	w.widths = make([]int, len(sigs))
	root := &scope{}
	for i, s := range sigs {
		if s.ID != i {
			return errors.Errorf("vcd: signal %s has id %d, expected %d", s.Name, s.ID, i)
		}
		w.ids[i] = Identifier(i)
		w.widths[i] = s.Width
		sc := root
		for _, name := range s.Scope {
			sc = sc.child(name)
		}
		sc.vars = append(sc.vars, s)
	}

	w.print("$version ", w.opts.Version, " $end\n")
	w.print("$timescale ", w.opts.Timescale, " $end\n")
	for _, s := range root.children {
		w.scope(s)
	}
	w.print("$enddefinitions $end\n")
	w.print("#0\n$dumpvars\n")
	for _, s := range sigs {
		w.value(s.ID, s.Init)
	}
	w.print("$end\n")
	return w.err
}

// Change implements rtl.Tracer.
//
func (w *Writer) Change(e rtl.TraceEvent) error {
	if w.err != nil {
		return w.err
	}
	if !w.begun {
		return errors.New("vcd: Change called before Begin")
	}
	if e.ID < 0 || e.ID >= len(w.ids) {
		return errors.Errorf("vcd: unknown signal id %d", e.ID)
	}
	if e.Time < w.time {
		return errors.Errorf("vcd: event at time %d after time %d", e.Time, w.time)
	}
	if e.Time > w.time {
		w.time = e.Time
		w.print("#", strconv.FormatUint(e.Time, 10), "\n")
	}
	w.value(e.ID, e.Value)
	return w.err
}

// Close implements rtl.Tracer. It flushes buffered output but does not close
// the underlying io.Writer.
//
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = &rtl.IOError{Op: "vcd flush", Err: err}
	}
	return w.err
}
