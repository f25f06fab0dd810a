// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"strconv"
	"testing"

	"github.com/db47h/rtl"
	hl "github.com/db47h/rtl/hwlib"
	"github.com/db47h/rtl/hwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHalfAdder(t *testing.T) {
	m, err := hl.HalfAdder("half_adder")
	testComb(t, must(t, m, err), func(in []uint64) []uint64 {
		s := in[0] + in[1]
		return []uint64{s & 1, s >> 1}
	})
}

func TestFullAdder(t *testing.T) {
	m, err := hl.FullAdder("full_adder")
	testComb(t, must(t, m, err), func(in []uint64) []uint64 {
		s := in[0] + in[1] + in[2]
		return []uint64{s & 1, s >> 1}
	})
}

func TestAdder(t *testing.T) {
	m, err := hl.Adder("adder", 5)
	testComb(t, must(t, m, err), func(in []uint64) []uint64 {
		s := in[0] + in[1]
		return []uint64{s & 0x1f, s >> 5}
	})

	_, err = hl.Adder("adder", rtl.MaxWidth)
	assert.Error(t, err)
}

// rippleAdder builds an adder out of full adders.
func rippleAdder(t *testing.T, width int) *rtl.Module {
	t.Helper()
	b := rtl.NewBuilder("ripple")
	x, y := b.Input("a", width), b.Input("b", width)
	out, carry := b.Output("out", width), b.Output("carry", 1)
	fas := make([]*rtl.Module, width)
	for i := range fas {
		fa, err := hl.FullAdder("fa")
		fas[i] = b.Instance("fa"+strconv.Itoa(i), must(t, fa, err))
	}
	b.Comb(func(c *rtl.Body) {
		var cin rtl.Expr = rtl.Zero(1)
		sum := make([]rtl.Expr, width)
		for i, fa := range fas {
			c.Assign(fa.Port("a"), rtl.Index(x, i))
			c.Assign(fa.Port("b"), rtl.Index(y, i))
			c.Assign(fa.Port("cin"), cin)
			sum[width-1-i] = fa.Port("s")
			cin = fa.Port("cout")
		}
		c.Assign(out, rtl.Concat(sum...))
		c.Assign(carry, cin)
	})
	m, err := b.Build()
	return must(t, m, err)
}

func TestAdder_ripple(t *testing.T) {
	m, err := hl.Adder("ripple", 4)
	hwtest.CompareModules(t, 256, "", must(t, m, err), rippleAdder(t, 4))
}

// The carry chain of a wide ripple adder is far deeper than the default
// iteration budget.
func TestAdder_rippleDeep(t *testing.T) {
	const width = 40
	m := rippleAdder(t, width)
	s := mustSim(t, m)
	in, out := inputs(m)
	full := uint64(1)<<width - 1
	for _, v := range [][2]uint64{{full, 1}, {full, full}, {0x5555555555, 0xaaaaaaaaab}, {12345, 67890}} {
		require.NoError(t, hl.SetUint(s, in[0], v[0]))
		require.NoError(t, hl.SetUint(s, in[1], v[1]))
		require.NoError(t, s.Step())
		sum := v[0] + v[1]
		assert.Equal(t, sum&full, hl.Uint(s, out[0]), "%x + %x", v[0], v[1])
		assert.Equal(t, sum>>width, hl.Uint(s, out[1]), "%x + %x carry", v[0], v[1])
	}

	a, err := hl.Adder("ripple", width)
	hwtest.CompareModules(t, 16, "", must(t, a, err), m)
}

func TestInc(t *testing.T) {
	m, err := hl.Inc("inc", 6)
	testComb(t, must(t, m, err), func(in []uint64) []uint64 {
		return []uint64{(in[0] + 1) & 0x3f}
	})
}
