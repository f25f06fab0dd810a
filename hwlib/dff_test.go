// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"testing"

	hl "github.com/db47h/rtl/hwlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	m, err := hl.Register("reg", 8)
	m = must(t, m, err)
	s := mustSim(t, m)
	clk, load, in, out := m.Port("clk"), m.Port("load"), m.Port("in"), m.Port("out")

	td := []struct {
		load bool
		in   uint64
		out  uint64
	}{
		{false, 42, 0},
		{true, 42, 42},
		{false, 7, 42},
		{false, 0, 42},
		{true, 7, 7},
		{true, 255, 255},
	}
	for i, d := range td {
		require.NoError(t, hl.SetBool(s, load, d.load))
		require.NoError(t, hl.SetUint(s, in, d.in))
		require.NoError(t, s.Cycle(clk))
		assert.Equal(t, d.out, hl.Uint(s, out), "cycle %d", i)
	}
}

func TestCounter(t *testing.T) {
	m, err := hl.Counter("cnt", 3)
	m = must(t, m, err)
	s := mustSim(t, m)
	clk, en, reset, out := m.Port("clk"), m.Port("en"), m.Port("reset"), m.Port("out")

	require.NoError(t, hl.SetBool(s, en, true))
	for i := 1; i <= 10; i++ {
		require.NoError(t, s.Cycle(clk))
		assert.Equal(t, uint64(i%8), hl.Uint(s, out))
	}
	// 10 % 8 == 2
	require.NoError(t, hl.SetBool(s, en, false))
	require.NoError(t, s.Cycles(clk, 3))
	assert.Equal(t, uint64(2), hl.Uint(s, out))

	require.NoError(t, hl.SetBool(s, en, true))
	require.NoError(t, hl.SetBool(s, reset, true))
	require.NoError(t, s.Cycle(clk))
	assert.Equal(t, uint64(0), hl.Uint(s, out))
}

func TestSynchronizer(t *testing.T) {
	m, err := hl.Synchronizer("sync", 4)
	m = must(t, m, err)
	s := mustSim(t, m)
	clk, in, out := m.Port("clk"), m.Port("in"), m.Port("out")

	seq := []uint64{3, 5, 9, 9, 1, 0, 0}
	for i, v := range seq {
		require.NoError(t, hl.SetUint(s, in, v))
		require.NoError(t, s.Cycle(clk))
		var ex uint64
		if i >= 1 {
			ex = seq[i-1]
		}
		assert.Equal(t, ex, hl.Uint(s, out), "cycle %d", i)
	}
}

func TestSetUint_truncates(t *testing.T) {
	m, err := hl.Inc("inc", 4)
	m = must(t, m, err)
	s := mustSim(t, m)
	require.NoError(t, hl.SetUint(s, m.Port("in"), 0x1f))
	require.NoError(t, s.Step())
	assert.Equal(t, uint64(0), hl.Uint(s, m.Port("out")))
}
