// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"strings"

	"github.com/pkg/errors"
)

// An Instance is a named child module within its parent.
//
type Instance struct {
	Name   string
	Module *Module
}

// A Module is a composite unit of logic: a set of ports and local signals,
// primitives, child module instances, the nets joining them and a body of
// statements.
//
// Modules are created by a Builder and are immutable once built. A module
// exclusively owns its children; children do not know their parent.
//
type Module struct {
	name     string
	ports    []*Signal
	locals   []*Signal
	bundles  []*Bundle
	prims    []Primitive
	children []*Instance
	body     []Stmt
	nets     []Net
	adopted  bool

	// ConnectAll results
	checked  bool
	checkErr error
	driven   map[*Signal]bool // ports driven from inside the module
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Ports returns the module's interface signals in declaration order.
func (m *Module) Ports() []*Signal { return m.ports }

// Locals returns the module's internal signals in declaration order,
// including those of its primitives.
func (m *Module) Locals() []*Signal { return m.locals }

// Signals returns all signals declared by m: ports first, then locals.
//
func (m *Module) Signals() []*Signal {
	r := make([]*Signal, 0, len(m.ports)+len(m.locals))
	r = append(r, m.ports...)
	return append(r, m.locals...)
}

// Bundles returns the module's port bundles.
func (m *Module) Bundles() []*Bundle { return m.bundles }

// Primitives returns the module's leaf units in declaration order.
func (m *Module) Primitives() []Primitive { return m.prims }

// Children returns the child instances in declaration order.
func (m *Module) Children() []*Instance { return m.children }

// Body returns the statements of the module body.
func (m *Module) Body() []Stmt { return m.body }

// Nets returns the connection records created by Join and Link.
func (m *Module) Nets() []Net { return m.nets }

// Port returns the port with the given name or nil.
//
func (m *Module) Port(name string) *Signal {
	for _, p := range m.ports {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Bundle returns the bundle with the given name or nil.
//
func (m *Module) Bundle(name string) *Bundle {
	for _, b := range m.bundles {
		if b.name == name {
			return b
		}
	}
	return nil
}

// Child returns the child instance with the given name or nil.
//
func (m *Module) Child(name string) *Module {
	for _, c := range m.children {
		if c.Name == name {
			return c.Module
		}
	}
	return nil
}

// instanceOf returns the instance name of child module c, or "".
func (m *Module) instanceOf(c *Module) string {
	for _, i := range m.children {
		if i.Module == c {
			return i.Name
		}
	}
	return ""
}

// LocalName returns the name under which s is known inside m: its own name
// for signals of m and inst$name for ports of a child instance. It returns ""
// if s is not visible from m.
//
func (m *Module) LocalName(s *Signal) string {
	if s.owner == m {
		return s.name
	}
	if !s.IsPort() {
		return ""
	}
	if i := m.instanceOf(s.owner); i != "" {
		return i + "$" + s.name
	}
	return ""
}

// Mount implements Logic. Children are mounted first in declaration order,
// then primitives, then the module body and nets.
//
func (m *Module) Mount(s *Socket) []Component {
	for _, sig := range m.ports {
		s.alloc(sig)
	}
	for _, sig := range m.locals {
		s.alloc(sig)
	}
	var cs []Component
	for _, c := range m.children {
		cs = append(cs, c.Module.Mount(s.Sub(c.Name))...)
	}
	for _, p := range m.prims {
		cs = append(cs, p.Mount(s)...)
	}
	if len(m.body) > 0 || len(m.nets) > 0 {
		cs = append(cs, compileBody(m.body, m.nets, s))
	}
	return cs
}

// A Builder builds a Module.
//
// Builder methods record the first error encountered, which is then returned
// by Build. Methods that return a value always return a usable placeholder so
// that construction code does not need to check errors at every step.
//
type Builder struct {
	m     *Module
	names map[string]bool
	err   error
	built bool
}

// NewBuilder returns a builder for a module with the given name.
//
func NewBuilder(name string) *Builder {
	b := &Builder{m: &Module{name: name}, names: make(map[string]bool)}
	if !validIdent(name) {
		b.fail(errors.Errorf("invalid module name %q", name))
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = errors.Wrapf(err, "module %s", b.m.name)
	}
}

// Err returns the first error recorded by b.
func (b *Builder) Err() error { return b.err }

// Module returns the module under construction. Its signals may be referenced
// but it must not be used for simulation or code generation before Build
// returns.
//
func (b *Builder) Module() *Module { return b.m }

func (b *Builder) declare(name string) bool {
	if b.built {
		b.fail(errors.New("module already built"))
		return false
	}
	if !validPath(name) {
		b.fail(errors.Errorf("invalid name %q", name))
		return false
	}
	if b.names[name] {
		b.fail(errors.Errorf("duplicate name %q", name))
		return false
	}
	b.names[name] = true
	return true
}

func (b *Builder) signal(name string, width int, dir Direction) *Signal {
	if !validIdent(name) {
		b.fail(errors.Errorf("invalid name %q", name))
	}
	return b.member(name, width, dir)
}

// member declares a signal whose name may be a $ separated path, as used for
// bundle fields and primitive pins.
func (b *Builder) member(name string, width int, dir Direction) *Signal {
	s := &Signal{name: name, width: width, dir: dir, owner: b.m}
	if err := checkWidth(width); err != nil {
		b.fail(errors.Wrapf(err, "signal %s", name))
		s.width = 1
	}
	if !b.declare(name) {
		return s
	}
	if dir == Internal {
		b.m.locals = append(b.m.locals, s)
	} else {
		b.m.ports = append(b.m.ports, s)
	}
	return s
}

// Input declares an input port.
func (b *Builder) Input(name string, width int) *Signal { return b.signal(name, width, Input) }

// Output declares an output port.
func (b *Builder) Output(name string, width int) *Signal { return b.signal(name, width, Output) }

// InOut declares a port that may be driven from either side, but not both.
func (b *Builder) InOut(name string, width int) *Signal { return b.signal(name, width, InOut) }

// Local declares an internal signal.
func (b *Builder) Local(name string, width int) *Signal { return b.signal(name, width, Internal) }

func (b *Builder) specs(spec string, dir Direction) []*Signal {
	ps, err := ParsePorts(spec)
	if err != nil {
		b.fail(err)
		return nil
	}
	r := make([]*Signal, len(ps))
	for i, p := range ps {
		r[i] = b.signal(p.Name, p.Width, dir)
	}
	return r
}

// Inputs declares input ports from a port specification such as
// "a, b, addr[8]". See ParsePorts.
//
func (b *Builder) Inputs(spec string) []*Signal { return b.specs(spec, Input) }

// Outputs declares output ports from a port specification.
func (b *Builder) Outputs(spec string) []*Signal { return b.specs(spec, Output) }

// Locals declares internal signals from a port specification.
func (b *Builder) Locals(spec string) []*Signal { return b.specs(spec, Internal) }

// Add adds a primitive whose signals have already been declared in b.
//
func (b *Builder) Add(p Primitive) {
	if b.built {
		b.fail(errors.New("module already built"))
		return
	}
	for _, s := range append(p.Reads(), p.Drives()...) {
		if s == nil || s.owner != b.m {
			b.fail(errors.Errorf("primitive %s uses a signal not declared in this module", p.Name()))
			return
		}
	}
	b.m.prims = append(b.m.prims, p)
}

// DFF declares a zero initialized flip flop of the given width.
//
func (b *Builder) DFF(name string, width int) *DFF {
	if err := checkWidth(width); err != nil {
		b.fail(errors.Wrapf(err, "dff %s", name))
		width = 1
	}
	return b.DFFInit(name, Zero(width))
}

// DFFInit declares a flip flop holding init until its first clock edge.
//
func (b *Builder) DFFInit(name string, init Bits) *DFF {
	if !init.IsValid() {
		b.fail(errors.Errorf("dff %s: invalid initial value", name))
		init = Zero(1)
	}
	d := &DFF{name: name, Init: init}
	if !validIdent(name) {
		b.fail(errors.Errorf("invalid name %q", name))
	}
	ok := b.declare(name)
	d.Clk = b.member(name+"$clk", 1, Internal)
	d.D = b.member(name+"$d", init.Width(), Internal)
	d.Q = b.member(name+"$q", init.Width(), Internal)
	if ok {
		b.Add(d)
	}
	return d
}

// Constant declares a constant signal.
//
func (b *Builder) Constant(name string, v Bits) *Signal {
	if !v.IsValid() {
		b.fail(errors.Errorf("constant %s: invalid value", name))
		v = Zero(1)
	}
	out := b.Local(name, v.Width())
	b.Add(&Constant{name: name, Out: out, Value: v})
	return out
}

// Source declares a behavioral signal driven by fn.
//
func (b *Builder) Source(name string, width int, fn func(t uint64) Bits) *Signal {
	out := b.Local(name, width)
	b.Add(&Source{name: name, Out: out, Fn: fn})
	return out
}

// Instance adds m as a child instance. A module can only be instantiated
// once.
//
func (b *Builder) Instance(name string, m *Module) *Module {
	if m == nil {
		b.fail(errors.Errorf("instance %s: nil module", name))
		return m
	}
	if m == b.m || m.adopted {
		b.fail(errors.Errorf("instance %s: module %s is already instantiated", name, m.name))
		return m
	}
	if !b.declare(name) {
		return m
	}
	m.adopted = true
	b.m.children = append(b.m.children, &Instance{name, m})
	return m
}

// Comb appends the statements built by fn to the module body.
//
func (b *Builder) Comb(fn func(*Body)) {
	if b.built {
		b.fail(errors.New("module already built"))
		return
	}
	body := &Body{}
	fn(body)
	if err := body.Err(); err != nil {
		b.fail(err)
		return
	}
	b.m.body = append(b.m.body, body.stmts...)
}

// Build returns the finished module.
//
func (b *Builder) Build() (*Module, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, errors.Errorf("module %s already built", b.m.name)
	}
	b.built = true
	return b.m, nil
}

// validIdent reports whether s is a valid user supplied name. Names must be
// valid Verilog identifiers; '$' is reserved as a hierarchy separator.
//
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func validPath(s string) bool {
	for _, p := range strings.Split(s, "$") {
		if !validIdent(p) {
			return false
		}
	}
	return true
}
