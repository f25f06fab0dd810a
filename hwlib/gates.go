// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable modules for rtl: word wide
// gates, multiplexers and adders, registers and counters, SoC bus bundles, a
// bus port and an address router.
//
// Constructors return a freshly built *rtl.Module on every call, since a
// module can only be instantiated once.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/rtl"
)

// common port names
const (
	pA     = "a"
	pB     = "b"
	pIn    = "in"
	pSel   = "sel"
	pOut   = "out"
	pClk   = "clk"
	pCarry = "carry"
)

// way returns the name of the i-th port of an n-way part: a, b, c...
func way(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return "p" + strconv.Itoa(i)
}

// Not returns a word wide NOT gate.
//
//	Inputs: in[width]
//	Outputs: out[width]
//	Function: out = ~in
//
func Not(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	in, out := b.Input(pIn, width), b.Output(pOut, width)
	b.Comb(func(c *rtl.Body) { c.Assign(out, rtl.Not(in)) })
	return b.Build()
}

// Gate returns a two input gate computing fn(a, b) on words of the given width.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width]
//	Function: out = fn(a, b)
//
func Gate(name string, width int, fn func(a, b rtl.Expr) rtl.Expr) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	x, y := b.Input(pA, width), b.Input(pB, width)
	out := b.Output(pOut, width)
	b.Comb(func(c *rtl.Body) { c.Assign(out, fn(x, y)) })
	return b.Build()
}

// And returns a word wide AND gate.
func And(name string, width int) (*rtl.Module, error) { return Gate(name, width, rtl.And) }

// Nand returns a word wide NAND gate.
func Nand(name string, width int) (*rtl.Module, error) {
	return Gate(name, width, func(a, b rtl.Expr) rtl.Expr { return rtl.Not(rtl.And(a, b)) })
}

// Or returns a word wide OR gate.
func Or(name string, width int) (*rtl.Module, error) { return Gate(name, width, rtl.Or) }

// Nor returns a word wide NOR gate.
func Nor(name string, width int) (*rtl.Module, error) {
	return Gate(name, width, func(a, b rtl.Expr) rtl.Expr { return rtl.Not(rtl.Or(a, b)) })
}

// Xor returns a word wide XOR gate.
func Xor(name string, width int) (*rtl.Module, error) { return Gate(name, width, rtl.Xor) }

// Xnor returns a word wide XNOR gate.
func Xnor(name string, width int) (*rtl.Module, error) {
	return Gate(name, width, func(a, b rtl.Expr) rtl.Expr { return rtl.Not(rtl.Xor(a, b)) })
}

func nWay(name string, ways int, reduce func(rtl.Expr) rtl.Expr) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	ins := make([]rtl.Expr, ways)
	for i := range ins {
		ins[i] = b.Input(way(i), 1)
	}
	out := b.Output(pOut, 1)
	b.Comb(func(c *rtl.Body) { c.Assign(out, reduce(rtl.Concat(ins...))) })
	return b.Build()
}

// OrNWay returns an OR gate with the given number of single bit inputs, named
// a, b, c...
//
//	Inputs: a, b, ...
//	Outputs: out
//	Function: out = a | b | ...
//
func OrNWay(name string, ways int) (*rtl.Module, error) { return nWay(name, ways, rtl.ReduceOr) }

// AndNWay returns an AND gate with the given number of single bit inputs.
//
//	Inputs: a, b, ...
//	Outputs: out
//	Function: out = a & b & ...
//
func AndNWay(name string, ways int) (*rtl.Module, error) { return nWay(name, ways, rtl.ReduceAnd) }
