// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// DFF is a clocked data flip flop.
//
//	Inputs: clk, d
//	Outputs: q
//	Function: on a rising edge of clk, q takes the value d had before the edge.
//	          q holds its value otherwise.
//
// The three signals are locals of the enclosing module, named name$clk,
// name$d and name$q. The module body drives Clk and D.
//
type DFF struct {
	name string
	Clk  *Signal
	D    *Signal
	Q    *Signal
	Init Bits
}

// Name implements Logic.
func (d *DFF) Name() string { return d.name }

// Reads implements Primitive.
func (d *DFF) Reads() []*Signal { return []*Signal{d.Clk, d.D} }

// Drives implements Primitive.
func (d *DFF) Drives() []*Signal { return []*Signal{d.Q} }

// Mount implements Logic.
func (d *DFF) Mount(s *Socket) []Component {
	clk, din, q := s.Pin(d.Clk), s.Pin(d.D), s.Pin(d.Q)
	s.Init(d.Q, d.Init)
	return []Component{
		func(c *Simulation) {
			if c.rising(clk) {
				c.next[q] = c.val[din]
			} else {
				c.next[q] = c.val[q]
			}
		}}
}

// Constant is a signal with a fixed value.
//
type Constant struct {
	name  string
	Out   *Signal
	Value Bits
}

// Name implements Logic.
func (k *Constant) Name() string { return k.name }

// Reads implements Primitive.
func (k *Constant) Reads() []*Signal { return nil }

// Drives implements Primitive.
func (k *Constant) Drives() []*Signal { return []*Signal{k.Out} }

// Mount implements Logic.
func (k *Constant) Mount(s *Socket) []Component {
	out, v := s.Pin(k.Out), k.Value.v
	s.Init(k.Out, k.Value)
	return []Component{
		func(c *Simulation) { c.next[out] = v },
	}
}

// Source is a behavioral signal generator driven by a Go function of the
// simulated time. It is meant for test benches: code generators do not support
// it.
//
type Source struct {
	name string
	Out  *Signal
	Fn   func(t uint64) Bits
}

// Name implements Logic.
func (g *Source) Name() string { return g.name }

// Reads implements Primitive.
func (g *Source) Reads() []*Signal { return nil }

// Drives implements Primitive.
func (g *Source) Drives() []*Signal { return []*Signal{g.Out} }

// Mount implements Logic.
func (g *Source) Mount(s *Socket) []Component {
	out, m := s.Pin(g.Out), mask(g.Out.width)
	return []Component{
		func(c *Simulation) { c.next[out] = g.Fn(c.time).v & m },
	}
}
