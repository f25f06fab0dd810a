// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
)

// selWidth returns the number of bits needed to select one of n items.
func selWidth(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Mux returns a word wide multiplexer.
//
//	Inputs: a[width], b[width], sel
//	Outputs: out[width]
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	x, y, sel := b.Input(pA, width), b.Input(pB, width), b.Input(pSel, 1)
	out := b.Output(pOut, width)
	b.Comb(func(c *rtl.Body) { c.Assign(out, rtl.Mux(sel, x, y)) })
	return b.Build()
}

// MuxMWay returns a word wide multiplexer with the given number of inputs,
// named a, b, c...
//
//	Inputs: a[width], b[width], ..., sel[log2(ways)]
//	Outputs: out[width]
//	Function: out = input number sel, 0 if sel >= ways
//
func MuxMWay(name string, ways, width int) (*rtl.Module, error) {
	if ways < 2 {
		return nil, errors.Errorf("%s: a multiplexer needs at least 2 inputs, got %d", name, ways)
	}
	b := rtl.NewBuilder(name)
	ins := make([]*rtl.Signal, ways)
	for i := range ins {
		ins[i] = b.Input(way(i), width)
	}
	sel := b.Input(pSel, selWidth(ways))
	out := b.Output(pOut, width)
	b.Comb(func(c *rtl.Body) {
		c.Switch(sel, func(s *rtl.SwitchBody) {
			for i, in := range ins {
				in := in
				s.Case(rtl.MustBits(sel.Width(), uint64(i)), func(c *rtl.Body) { c.Assign(out, in) })
			}
			s.Default(func(c *rtl.Body) { c.Assign(out, rtl.Zero(width)) })
		})
	})
	return b.Build()
}

// DMux returns a word wide demultiplexer.
//
//	Inputs: in[width], sel
//	Outputs: a[width], b[width]
//	Function: if sel == 0 { a, b = in, 0 } else { a, b = 0, in }
//
func DMux(name string, width int) (*rtl.Module, error) {
	b := rtl.NewBuilder(name)
	in, sel := b.Input(pIn, width), b.Input(pSel, 1)
	x, y := b.Output(pA, width), b.Output(pB, width)
	zero := rtl.Zero(width)
	b.Comb(func(c *rtl.Body) {
		c.Assign(x, rtl.Mux(sel, in, zero))
		c.Assign(y, rtl.Mux(sel, zero, in))
	})
	return b.Build()
}
