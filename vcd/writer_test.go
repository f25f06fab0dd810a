// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vcd_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/vcd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inverter(t *testing.T) *rtl.Module {
	b := rtl.NewBuilder("inv")
	in, out := b.Input("in", 1), b.Output("out", 1)
	b.Comb(func(c *rtl.Body) { c.Assign(out, rtl.Not(in)) })
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

const inverterVCD = `$version rtl $end
$timescale 1ns $end
$scope module inv $end
$var wire 1 ! in $end
$var wire 1 " out $end
$upscope $end
$enddefinitions $end
#0
$dumpvars
0!
0"
$end
1"
#1
1!
0"
`

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	m := inverter(t)
	s, err := rtl.NewSimulation(m, rtl.WithTracer(vcd.NewWriter(&buf, vcd.Options{})))
	require.NoError(t, err)

	require.NoError(t, s.Step())
	require.NoError(t, s.Inject(m.Port("in"), rtl.Bit(true)))
	require.NoError(t, s.Step())
	_, err = s.Finish()
	require.NoError(t, err)

	assert.Equal(t, inverterVCD, buf.String())
}

func TestWriter_scopes(t *testing.T) {
	cb := rtl.NewBuilder("cnt")
	clk, out := cb.Input("clk", 1), cb.Output("out", 4)
	r := cb.DFF("r", 4)
	cb.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, rtl.Add(r.Q, rtl.Lit(4, 1)))
		c.Assign(out, r.Q)
	})
	cnt, err := cb.Build()
	require.NoError(t, err)

	b := rtl.NewBuilder("top")
	tclk, tout := b.Input("clk", 1), b.Output("out", 4)
	c0 := b.Instance("c0", cnt)
	b.Comb(func(c *rtl.Body) {
		c.Assign(c0.Port("clk"), tclk)
		c.Assign(tout, c0.Port("out"))
	})
	top, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	s, err := rtl.NewSimulation(top, rtl.WithTracer(vcd.NewWriter(&buf, vcd.Options{Timescale: "10ps"})))
	require.NoError(t, err)
	require.NoError(t, s.Cycles(tclk, 2))
	_, err = s.Finish()
	require.NoError(t, err)

	text := buf.String()
	assert.Contains(t, text, "$timescale 10ps $end\n")
	assert.Contains(t, text, "$scope module top $end\n$var wire 1 ! clk $end\n$var wire 4 \" out $end\n$scope module c0 $end\n")
	assert.Contains(t, text, "$var wire 4 ' r$q $end\n")
	assert.Contains(t, text, "b0010 \"\n")
	assert.Equal(t, 2, strings.Count(text, "$upscope $end"))
	assert.NotContains(t, text, "$date")
}

func TestWriter_outOfOrder(t *testing.T) {
	w := vcd.NewWriter(&bytes.Buffer{}, vcd.Options{})
	require.NoError(t, w.Begin([]rtl.TraceSignal{{ID: 0, Scope: []string{"m"}, Name: "a", Width: 1, Init: rtl.Bit(false)}}))
	require.NoError(t, w.Change(rtl.TraceEvent{Time: 5, ID: 0, Value: rtl.Bit(true)}))
	assert.Error(t, w.Change(rtl.TraceEvent{Time: 3, ID: 0, Value: rtl.Bit(false)}))
	assert.Error(t, w.Change(rtl.TraceEvent{Time: 6, ID: 1, Value: rtl.Bit(false)}))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriter_ioError(t *testing.T) {
	w := vcd.NewWriter(failWriter{}, vcd.Options{})
	require.NoError(t, w.Begin([]rtl.TraceSignal{{ID: 0, Scope: []string{"m"}, Name: "a", Width: 8, Init: rtl.Zero(8)}}))
	err := w.Close()
	var ioe *rtl.IOError
	require.True(t, errors.As(err, &ioe), "got %v", err)
	assert.EqualError(t, ioe.Err, "broken pipe")
	// sticky
	assert.Equal(t, err, w.Change(rtl.TraceEvent{Time: 1, ID: 0, Value: rtl.Zero(8)}))
}

func TestIdentifier(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100000; i++ {
		id := vcd.Identifier(i)
		require.False(t, seen[id], "duplicate identifier %q for %d", id, i)
		seen[id] = true
		for _, c := range id {
			require.True(t, c >= '!' && c <= '~')
		}
	}
	assert.Equal(t, "!", vcd.Identifier(0))
	assert.Equal(t, "~", vcd.Identifier(93))
}
