// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/rtl"
	"github.com/pkg/errors"
)

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b), c = msb(a + b)
//
func HalfAdder(name string) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	x, y := b.Input(pA, 1), b.Input(pB, 1)
	s, c := b.Output("s", 1), b.Output("c", 1)
	b.Comb(func(body *rtl.Body) {
		body.Assign(s, rtl.Xor(x, y))
		body.Assign(c, rtl.And(x, y))
	})
	return b.Build()
}

// FullAdder returns a full adder built from two half adders.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin), cout = msb(a + b + cin)
//
func FullAdder(name string) (*rtl.Module, error) {
	h0, err := HalfAdder("half_adder")
	if err != nil {
		return nil, err
	}
	h1, err := HalfAdder("half_adder")
	if err != nil {
		return nil, err
	}
	b := rtl.NewBuilder(name)
	x, y, cin := b.Input(pA, 1), b.Input(pB, 1), b.Input("cin", 1)
	s, cout := b.Output("s", 1), b.Output("cout", 1)
	b.Instance("h0", h0)
	b.Instance("h1", h1)
	b.Comb(func(body *rtl.Body) {
		body.Assign(h0.Port(pA), x)
		body.Assign(h0.Port(pB), y)
		body.Assign(h1.Port(pA), h0.Port("s"))
		body.Assign(h1.Port(pB), cin)
		body.Assign(s, h1.Port("s"))
		body.Assign(cout, rtl.Or(h0.Port("c"), h1.Port("c")))
	})
	return b.Build()
}

// Adder returns a word wide adder with carry out.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width], carry
//	Function: out = a + b mod 2^width, carry = 1 if a + b overflows
//
func Adder(name string, width int) (*rtl.Module, error) {
	if width >= rtl.MaxWidth {
		return nil, errors.Errorf("%s: adder width must be less than %d", name, rtl.MaxWidth)
	}
	b := rtl.NewBuilder(name)
	x, y := b.Input(pA, width), b.Input(pB, width)
	out, carry := b.Output(pOut, width), b.Output(pCarry, 1)
	sum := b.Local("sum", width+1)
	b.Comb(func(c *rtl.Body) {
		c.Assign(sum, rtl.Add(rtl.Resize(x, width+1), rtl.Resize(y, width+1)))
		c.Assign(out, rtl.Slice(sum, width-1, 0))
		c.Assign(carry, rtl.Index(sum, width))
	})
	return b.Build()
}

// Inc returns a word wide incrementer.
//
//	Inputs: in[width]
//	Outputs: out[width]
//	Function: out = in + 1 mod 2^width
//
func Inc(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	in, out := b.Input(pIn, width), b.Output(pOut, width)
	b.Comb(func(c *rtl.Body) { c.Assign(out, rtl.Add(in, rtl.Lit(width, 1))) })
	return b.Build()
}
