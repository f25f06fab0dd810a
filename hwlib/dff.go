// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/rtl"

// Register returns a word wide register with load enable.
//
//	Inputs: clk, load, in[width]
//	Outputs: out[width]
//	Function: if load(t-1) { out(t) = in(t-1) } else { out(t) = out(t-1) }
//	          where t is the current clock cycle.
//
func Register(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	clk, load, in := b.Input(pClk, 1), b.Input("load", 1), b.Input(pIn, width)
	out := b.Output(pOut, width)
	r := b.DFF("r", width)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, rtl.Mux(load, r.Q, in))
		c.Assign(out, r.Q)
	})
	return b.Build()
}

// Counter returns a word wide counter with enable and synchronous reset.
//
//	Inputs: clk, en, reset
//	Outputs: out[width]
//	Function: on each clock edge, out = 0 if reset, out + 1 if en, out otherwise.
//
func Counter(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	clk, en, reset := b.Input(pClk, 1), b.Input("en", 1), b.Input("reset", 1)
	out := b.Output(pOut, width)
	r := b.DFF("count", width)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, r.Q)
		c.If(reset, func(c *rtl.Body) {
			c.Assign(r.D, rtl.Zero(width))
		}, func(c *rtl.Body) {
			c.If(en, func(c *rtl.Body) {
				c.Assign(r.D, rtl.Add(r.Q, rtl.Lit(width, 1)))
			}, nil)
		})
		c.Assign(out, r.Q)
	})
	return b.Build()
}

// Synchronizer returns a two stage synchronizer bringing an asynchronous input
// into the clk domain.
//
//	Inputs: clk, in[width]
//	Outputs: out[width]
//	Function: out(t) = in(t-2)
//
func Synchronizer(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	clk, in := b.Input(pClk, 1), b.Input(pIn, width)
	out := b.Output(pOut, width)
	s0, s1 := b.DFF("sync0", width), b.DFF("sync1", width)
	b.Comb(func(c *rtl.Body) {
		c.Assign(s0.Clk, clk)
		c.Assign(s1.Clk, clk)
		c.Assign(s0.D, in)
		c.Assign(s1.D, s0.Q)
		c.Assign(out, s1.Q)
	})
	return b.Build()
}
