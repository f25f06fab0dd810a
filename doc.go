// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package rtl provides the tools to describe synchronous digital hardware in Go,
simulate it cycle by cycle and render it as synthesizable Verilog.

Hardware is described as a hierarchy of modules built with a Builder. A module
declares ports and local signals, leaf primitives such as flip flops,
child module instances and a body of statements over combinational
expressions:

	b := rtl.NewBuilder("counter")
	clk, en := b.Input("clk", 1), b.Input("en", 1)
	out := b.Output("out", 8)
	r := b.DFF("r", 8)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, r.Q)
		c.If(en, func(c *rtl.Body) {
			c.Assign(r.D, rtl.Add(r.Q, rtl.Lit(8, 1)))
		}, nil)
		c.Assign(out, r.Q)
	})
	m, err := b.Build()

Bundles group ports so that whole interfaces can be connected at once with
Join (between two children) or Link (between a module and one of its
children).

The same expression trees drive both the Simulation and the code generators
in the verilog package, so simulated and generated behavior agree for every
construct both support.

A Simulation evaluates a design in steps: each step settles combinational
logic, then commits all values at once. Value changes are recorded as trace
events and may be streamed to a Tracer such as the VCD writer of the vcd
package.
*/
package rtl
