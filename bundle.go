// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"strconv"

	"github.com/pkg/errors"
)

// A Field describes one signal of a bundle.
//
type Field struct {
	Name  string
	Width int
	Dir   Direction
}

// Fields is a bundle interface description.
//
type Fields []Field

// Flip returns the mirror interface, with inputs and outputs swapped. A
// controller bus and a responder bus are typically the flip of one another.
//
func (fs Fields) Flip() Fields {
	r := make(Fields, len(fs))
	for i, f := range fs {
		f.Dir = f.Dir.Flip()
		r[i] = f
	}
	return r
}

// A Bundle is a named group of ports of a module, used as a unit of
// connection. Its signals are named bundle$field.
//
type Bundle struct {
	name   string
	owner  *Module
	fields Fields
	sigs   []*Signal
}

// Name returns the bundle name.
func (b *Bundle) Name() string { return b.name }

// Owner returns the module that declares b.
func (b *Bundle) Owner() *Module { return b.owner }

// Fields returns the interface description of b.
func (b *Bundle) Fields() Fields { return b.fields }

// Signals returns the signals of b in field order.
func (b *Bundle) Signals() []*Signal { return b.sigs }

// Signal returns the signal for the named field or nil.
//
func (b *Bundle) Signal(field string) *Signal {
	for i, f := range b.fields {
		if f.Name == field {
			return b.sigs[i]
		}
	}
	return nil
}

func (b *Bundle) String() string { return b.owner.name + "." + b.name }

// A Net is a point to point connection record from Source to Dest, created
// by Join or Link. Nets are evaluated as part of the module that declares them
// and rendered as continuous assignments.
//
type Net struct {
	Source *Signal
	Dest   *Signal
	Name   string
}

func (n Net) String() string { return n.Name }

// Bundle declares a bundle of ports. Field directions must be Input, Output or
// InOut.
//
func (b *Builder) Bundle(name string, fields Fields) *Bundle {
	bd := &Bundle{name: name, owner: b.m, fields: append(Fields(nil), fields...)}
	if !validIdent(name) {
		b.fail(errors.Errorf("invalid name %q", name))
	}
	b.declare(name)
	for _, f := range fields {
		if f.Dir == Internal {
			b.fail(errors.Errorf("bundle %s: field %s must be a port", name, f.Name))
		}
		if !validIdent(f.Name) {
			b.fail(errors.Errorf("bundle %s: invalid field name %q", name, f.Name))
		}
		bd.sigs = append(bd.sigs, b.member(name+"$"+f.Name, f.Width, f.Dir))
	}
	b.m.bundles = append(b.m.bundles, bd)
	return bd
}

func matchShape(x, y *Bundle, sameDir bool) error {
	mismatch := func(reason string) error {
		return &BundleShapeMismatchError{A: x.String(), B: y.String(), Reason: reason}
	}
	if len(x.fields) != len(y.fields) {
		return mismatch("field count " + strconv.Itoa(len(x.fields)) + " != " + strconv.Itoa(len(y.fields)))
	}
	for _, f := range x.fields {
		var g *Field
		for i := range y.fields {
			if y.fields[i].Name == f.Name {
				g = &y.fields[i]
				break
			}
		}
		switch {
		case g == nil:
			return mismatch("missing field " + f.Name)
		case g.Width != f.Width:
			return mismatch("field " + f.Name + " width " + strconv.Itoa(f.Width) + " != " + strconv.Itoa(g.Width))
		case f.Dir == InOut || g.Dir == InOut:
			return mismatch("field " + f.Name + " is bidirectional")
		case sameDir && f.Dir != g.Dir:
			return mismatch("field " + f.Name + " direction " + f.Dir.String() + " != " + g.Dir.String())
		case !sameDir && f.Dir != g.Dir.Flip():
			return mismatch("field " + f.Name + " direction " + f.Dir.String() + " does not mirror " + g.Dir.String())
		}
	}
	return nil
}

func (b *Builder) net(src, dst *Signal) {
	b.m.nets = append(b.m.nets, Net{
		Source: src,
		Dest:   dst,
		Name:   b.m.LocalName(src) + " -> " + b.m.LocalName(dst),
	})
}

func (b *Builder) isChild(m *Module) bool {
	return m != b.m && b.m.instanceOf(m) != ""
}

// Join connects the bundles of two child instances: outputs of one drive the
// inputs of the other field by field. The bundles must declare the same field
// names and widths with mirrored directions.
//
func (b *Builder) Join(x, y *Bundle) error {
	if b.built {
		err := errors.New("module already built")
		b.fail(err)
		return err
	}
	if !b.isChild(x.owner) || !b.isChild(y.owner) || x.owner == y.owner {
		err := errors.Errorf("join %s, %s: bundles must belong to two distinct child instances", x, y)
		b.fail(err)
		return err
	}
	if err := matchShape(x, y, false); err != nil {
		b.fail(err)
		return err
	}
	for i, f := range x.fields {
		xs, ys := x.sigs[i], y.Signal(f.Name)
		if f.Dir == Output {
			b.net(xs, ys)
		} else {
			b.net(ys, xs)
		}
	}
	return nil
}

// Link connects a bundle of the module under construction to a bundle of one
// of its children with the same directions: inputs flow down into the child,
// outputs flow up from it.
//
func (b *Builder) Link(x, y *Bundle) error {
	if b.built {
		err := errors.New("module already built")
		b.fail(err)
		return err
	}
	own, child := x, y
	if own.owner != b.m {
		own, child = y, x
	}
	if own.owner != b.m || !b.isChild(child.owner) {
		err := errors.Errorf("link %s, %s: expected one bundle of %s and one of a child instance", x, y, b.m.name)
		b.fail(err)
		return err
	}
	if err := matchShape(own, child, true); err != nil {
		b.fail(err)
		return err
	}
	for i, f := range own.fields {
		os, cs := own.sigs[i], child.Signal(f.Name)
		if f.Dir == Input {
			b.net(os, cs)
		} else {
			b.net(cs, os)
		}
	}
	return nil
}
