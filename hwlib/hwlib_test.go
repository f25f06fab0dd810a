// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"testing"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/hwlib"
	"github.com/stretchr/testify/require"
)

func must(t *testing.T, m *rtl.Module, err error) *rtl.Module {
	t.Helper()
	require.NoError(t, err)
	return m
}

func mustSim(t *testing.T, m *rtl.Module) *rtl.Simulation {
	t.Helper()
	s, err := rtl.NewSimulation(m)
	require.NoError(t, err)
	return s
}

func inputs(m *rtl.Module) (in, out []*rtl.Signal) {
	for _, p := range m.Ports() {
		if p.Dir() == rtl.Input {
			in = append(in, p)
		} else {
			out = append(out, p)
		}
	}
	return in, out
}

// testComb exhaustively checks a combinational module against fn, which
// computes the expected outputs from the input values, in port order.
//
func testComb(t *testing.T, m *rtl.Module, fn func(in []uint64) []uint64) {
	t.Helper()
	s := mustSim(t, m)
	in, out := inputs(m)
	bits := 0
	for _, p := range in {
		bits += p.Width()
	}
	require.True(t, bits <= 16, "too many input bits")

	values := make([]uint64, len(in))
	for n := uint64(0); n < 1<<uint(bits); n++ {
		v := n
		for i, p := range in {
			values[i] = v & (1<<uint(p.Width()) - 1)
			v >>= uint(p.Width())
			require.NoError(t, hwlib.SetUint(s, p, values[i]))
		}
		require.NoError(t, s.Step())
		ex := fn(values)
		for i, p := range out {
			if got := hwlib.Uint(s, p); got != ex[i] {
				t.Fatalf("%s%v: expected %s = %d, got %d", m.Name(), values, p.Name(), ex[i], got)
			}
		}
	}
}
