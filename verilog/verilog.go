// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package verilog renders rtl modules as synthesizable Verilog-2001.
//
// Each module body is folded into one continuous assignment per signal, if
// and switch statements becoming conditional expressions. Flip flops become
// registers updated on the rising edge of their clock and child instances
// become module instantiations. Signals of child instances are named
// instance$port.
//
// Constructs that simulate but cannot be rendered, such as behavioral sources,
// custom expressions or latches (signals not assigned on every path of a
// body), are reported as *rtl.UnsupportedConstructError.
//
package verilog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Renderer can be implemented by custom expressions and primitives to support
// code generation. For expressions, Verilog returns a Verilog expression. For
// primitives, it returns module items, one per line. name returns the Verilog
// identifier of a signal.
//
type Renderer interface {
	Verilog(name func(*rtl.Signal) string) (string, error)
}

// A Unit is the Verilog definition of one or more identical modules.
//
type Unit struct {
	Name   string
	Source string
}

// A Design is the Verilog rendering of a module hierarchy.
//
type Design struct {
	Top   string
	Units []Unit // children first, top-level module last
	names map[*rtl.Module]string
}

// Name returns the Verilog module name of m, or "" if m is not part of the
// design.
//
func (d *Design) Name(m *rtl.Module) string { return d.names[m] }

// String returns the Verilog source of the whole design.
//
func (d *Design) String() string {
	var sb strings.Builder
	sb.WriteString("// Code generated by rtl. DO NOT EDIT.\n")
	for _, u := range d.Units {
		sb.WriteString("\n")
		sb.WriteString(u.Source)
	}
	return sb.String()
}

// WriteTo writes the Verilog source of the design to w.
//
func (d *Design) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

// Generate checks the wiring of m with ConnectAll and renders it along with all
// of its descendants. Modules whose definitions render identically are emitted
// once. Module names are derived from rtl module names, with a numeric suffix
// when different definitions share a name.
//
func Generate(m *rtl.Module) (*Design, error) {
	if err := m.ConnectAll(); err != nil {
		return nil, err
	}
	g := &generator{
		d:      &Design{names: make(map[*rtl.Module]string)},
		byText: make(map[string]string),
		used:   make(map[string]bool),
	}
	top, err := g.module(m)
	if err != nil {
		return nil, err
	}
	g.d.Top = top
	return g.d, nil
}

type generator struct {
	d      *Design
	byText map[string]string
	used   map[string]bool
}

func (g *generator) module(m *rtl.Module) (string, error) {
	if n, ok := g.d.names[m]; ok {
		return n, nil
	}
	for _, c := range m.Children() {
		if _, err := g.module(c.Module); err != nil {
			return "", err
		}
	}
	w := &writer{g: g, m: m}
	text, err := w.render()
	if err != nil {
		return "", err
	}
	if n, ok := g.byText[text]; ok {
		logrus.WithField("module", m.Name()).Debugf("same definition as %s", n)
		g.d.names[m] = n
		return n, nil
	}
	name := m.Name()
	for i := 1; g.used[name] || keywords[name]; i++ {
		name = m.Name() + "_" + strconv.Itoa(i)
	}
	g.used[name] = true
	g.byText[text] = name
	g.d.names[m] = name
	g.d.Units = append(g.d.Units, Unit{Name: name, Source: "module " + name + text})
	return name, nil
}

// writer renders a single module definition, less the module keyword and
// name.
type writer struct {
	g     *generator
	m     *rtl.Module
	decls strings.Builder
	body  strings.Builder
	ntmp  int
}

func (w *writer) unsupported(format string, args ...interface{}) error {
	return &rtl.UnsupportedConstructError{Unit: w.m.Name(), Construct: fmt.Sprintf(format, args...)}
}

func (w *writer) name(s *rtl.Signal) string { return w.m.LocalName(s) }

func vector(width int) string {
	if width == 1 {
		return ""
	}
	return "[" + strconv.Itoa(width-1) + ":0] "
}

func (w *writer) declare(kind string, s *rtl.Signal) {
	fmt.Fprintf(&w.decls, "\t%s %s%s;\n", kind, vector(s.Width()), w.name(s))
}

func (w *writer) checkIdent(name string) error {
	if keywords[name] {
		return w.unsupported("identifier %s is a reserved word", name)
	}
	return nil
}

func (w *writer) render() (string, error) {
	m := w.m
	var hdr strings.Builder
	hdr.WriteString(" (")
	for i, p := range m.Ports() {
		if err := w.checkIdent(p.Name()); err != nil {
			return "", err
		}
		if i > 0 {
			hdr.WriteString(",")
		}
		fmt.Fprintf(&hdr, "\n\t%s wire %s%s", p.Dir(), vector(p.Width()), p.Name())
	}
	hdr.WriteString("\n);\n")

	regs := make(map[*rtl.Signal]bool)
	for _, p := range m.Primitives() {
		if d, ok := p.(*rtl.DFF); ok {
			regs[d.Q] = true
		}
	}
	for _, s := range m.Locals() {
		if err := w.checkIdent(s.Name()); err != nil {
			return "", err
		}
		if regs[s] {
			w.declare("reg", s)
		} else {
			w.declare("wire", s)
		}
	}
	for _, c := range m.Children() {
		if err := w.checkIdent(c.Name); err != nil {
			return "", err
		}
		for _, p := range c.Module.Ports() {
			w.declare("wire", p)
		}
	}

	if err := w.primitives(); err != nil {
		return "", err
	}
	w.instances()
	if err := w.comb(); err != nil {
		return "", err
	}
	for _, n := range m.Nets() {
		fmt.Fprintf(&w.body, "\tassign %s = %s;\n", w.name(n.Dest), w.name(n.Source))
	}

	var sb strings.Builder
	sb.WriteString(hdr.String())
	sb.WriteString(w.decls.String())
	if w.decls.Len() > 0 && w.body.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(w.body.String())
	sb.WriteString("endmodule\n")
	return sb.String(), nil
}

func (w *writer) primitives() error {
	for _, prim := range w.m.Primitives() {
		switch p := prim.(type) {
		case *rtl.DFF:
			q := w.name(p.Q)
			fmt.Fprintf(&w.body, "\tinitial %s = %s;\n", q, p.Init)
			fmt.Fprintf(&w.body, "\talways @(posedge %s) %s <= %s;\n", w.name(p.Clk), q, w.name(p.D))
		case *rtl.Constant:
			fmt.Fprintf(&w.body, "\tassign %s = %s;\n", w.name(p.Out), p.Value)
		case *rtl.Source:
			return w.unsupported("behavioral source %s", p.Name())
		case Renderer:
			s, err := p.Verilog(w.name)
			if err != nil {
				return errors.Wrapf(err, "primitive %s", prim.Name())
			}
			for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
				w.body.WriteString("\t" + l + "\n")
			}
		default:
			return w.unsupported("primitive %s of type %T", p.Name(), p)
		}
	}
	return nil
}

func (w *writer) instances() {
	for _, c := range w.m.Children() {
		fmt.Fprintf(&w.body, "\t%s %s (", w.g.d.names[c.Module], c.Name)
		for i, p := range c.Module.Ports() {
			if i > 0 {
				w.body.WriteString(",")
			}
			fmt.Fprintf(&w.body, "\n\t\t.%s(%s)", p.Name(), w.name(p))
		}
		w.body.WriteString("\n\t);\n")
	}
}

func (w *writer) comb() error {
	e := make(env)
	e.fold(w.m.Body())
	for _, s := range assigned(w.m.Body()) {
		v, err := w.value(e[s], s)
		if err != nil {
			return err
		}
		fmt.Fprintf(&w.body, "\tassign %s = %s;\n", w.name(s), v)
	}
	return nil
}

func (w *writer) value(v value, s *rtl.Signal) (string, error) {
	switch v := v.(type) {
	case *exprValue:
		return w.expr(v.e)
	case *condValue:
		c, err := w.expr(v.cond)
		if err != nil {
			return "", err
		}
		t, err := w.value(v.t, s)
		if err != nil {
			return "", err
		}
		f, err := w.value(v.f, s)
		if err != nil {
			return "", err
		}
		return "(" + c + " ? " + t + " : " + f + ")", nil
	}
	return "", w.unsupported("latch: %s is not assigned on every path", s.Name())
}

func (w *writer) expr(e rtl.Expr) (string, error) {
	switch e := e.(type) {
	case rtl.Bits:
		return e.String(), nil
	case *rtl.Signal:
		n := w.name(e)
		if n == "" {
			return "", &rtl.ScopeError{Module: w.m.Name(), Signal: e.String()}
		}
		return n, nil
	case *rtl.UnaryExpr:
		x, err := w.expr(e.X)
		if err != nil {
			return "", err
		}
		return "(" + e.Op.String() + x + ")", nil
	case *rtl.BinaryExpr:
		x, err := w.expr(e.X)
		if err != nil {
			return "", err
		}
		y, err := w.expr(e.Y)
		if err != nil {
			return "", err
		}
		return "(" + x + " " + e.Op.String() + " " + y + ")", nil
	case *rtl.MuxExpr:
		sel, err := w.expr(e.Sel)
		if err != nil {
			return "", err
		}
		a, err := w.expr(e.A)
		if err != nil {
			return "", err
		}
		b, err := w.expr(e.B)
		if err != nil {
			return "", err
		}
		return "(" + sel + " ? " + b + " : " + a + ")", nil
	case *rtl.SliceExpr:
		return w.slice(e.X, e.Hi, e.Lo)
	case *rtl.ConcatExpr:
		parts := make([]string, len(e.Parts))
		for i, p := range e.Parts {
			s, err := w.expr(p)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case *rtl.ResizeExpr:
		xw := e.X.Width()
		if e.W < xw {
			return w.slice(e.X, e.W-1, 0)
		}
		x, err := w.expr(e.X)
		if err != nil {
			return "", err
		}
		return "{" + strconv.Itoa(e.W-xw) + "'h0, " + x + "}", nil
	case Renderer:
		return e.Verilog(w.name)
	}
	return "", w.unsupported("expression of type %T", e)
}

// slice renders bits hi down to lo of x. Verilog only allows part selects on
// identifiers: other expressions go through a temporary wire.
func (w *writer) slice(x rtl.Expr, hi, lo int) (string, error) {
	if lo == 0 && hi == x.Width()-1 {
		return w.expr(x)
	}
	if s, ok := x.(*rtl.SliceExpr); ok {
		return w.slice(s.X, s.Lo+hi, s.Lo+lo)
	}
	if b, ok := x.(rtl.Bits); ok {
		r, err := b.Slice(hi, lo)
		if err != nil {
			return "", err
		}
		return r.String(), nil
	}
	base, err := w.expr(x)
	if err != nil {
		return "", err
	}
	if _, ok := x.(*rtl.Signal); !ok {
		base = w.temp(x.Width(), base)
	}
	if hi == lo {
		return base + "[" + strconv.Itoa(lo) + "]", nil
	}
	return base + "[" + strconv.Itoa(hi) + ":" + strconv.Itoa(lo) + "]", nil
}

func (w *writer) temp(width int, v string) string {
	n := "tmp$" + strconv.Itoa(w.ntmp)
	w.ntmp++
	fmt.Fprintf(&w.decls, "\twire %s%s;\n", vector(width), n)
	fmt.Fprintf(&w.body, "\tassign %s = %s;\n", n, v)
	return n
}

// Write renders m and writes the resulting Verilog source to w.
//
func Write(w io.Writer, m *rtl.Module) error {
	d, err := Generate(m)
	if err != nil {
		return err
	}
	if _, err = d.WriteTo(w); err != nil {
		return &rtl.IOError{Op: "verilog write", Err: err}
	}
	return nil
}
