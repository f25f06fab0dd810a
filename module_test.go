// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl_test

import (
	"testing"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_errors(t *testing.T) {
	td := []struct {
		name  string
		build func(b *rtl.Builder)
	}{
		{"duplicate", func(b *rtl.Builder) { b.Input("a", 1); b.Output("a", 1) }},
		{"bad width", func(b *rtl.Builder) { b.Input("a", 0) }},
		{"wide", func(b *rtl.Builder) { b.Input("a", rtl.MaxWidth+1) }},
		{"bad name", func(b *rtl.Builder) { b.Local("a$b", 1) }},
		{"bad spec", func(b *rtl.Builder) { b.Inputs("a, b[") }},
		{"assign width", func(b *rtl.Builder) {
			a, o := b.Input("a", 4), b.Output("o", 8)
			b.Comb(func(c *rtl.Body) { c.Assign(o, a) })
		}},
		{"bad expression", func(b *rtl.Builder) {
			a, o := b.Input("a", 4), b.Output("o", 4)
			b.Comb(func(c *rtl.Body) { c.Assign(o, rtl.Add(a, rtl.Lit(8, 1))) })
		}},
		{"wide condition", func(b *rtl.Builder) {
			a := b.Input("a", 4)
			b.Comb(func(c *rtl.Body) { c.If(a, nil, nil) })
		}},
		{"unknown port operand", func(b *rtl.Builder) {
			o := b.Output("o", 4)
			c0 := b.Instance("c0", counter(t, "cnt", 4))
			b.Comb(func(c *rtl.Body) { c.Assign(o, rtl.Add(c0.Port("outt"), rtl.Lit(4, 1))) })
		}},
		{"unknown port source", func(b *rtl.Builder) {
			o := b.Output("o", 4)
			c0 := b.Instance("c0", counter(t, "cnt", 4))
			b.Comb(func(c *rtl.Body) { c.Assign(o, c0.Port("outt")) })
		}},
		{"unknown port condition", func(b *rtl.Builder) {
			c0 := b.Instance("c0", counter(t, "cnt", 4))
			b.Comb(func(c *rtl.Body) { c.If(c0.Port("enn"), nil, nil) })
		}},
		{"unknown port selector", func(b *rtl.Builder) {
			c0 := b.Instance("c0", counter(t, "cnt", 4))
			b.Comb(func(c *rtl.Body) { c.Switch(c0.Port("outt"), nil) })
		}},
		{"duplicate case", func(b *rtl.Builder) {
			a := b.Input("a", 2)
			b.Comb(func(c *rtl.Body) {
				c.Switch(a, func(s *rtl.SwitchBody) {
					s.Case(rtl.MustBits(2, 1), nil)
					s.Case(rtl.MustBits(2, 1), nil)
				})
			})
		}},
	}
	for _, d := range td {
		b := rtl.NewBuilder("m")
		var err error
		require.NotPanics(t, func() {
			d.build(b)
			_, err = b.Build()
		}, d.name)
		assert.Error(t, err, d.name)
	}

	_, err := rtl.NewBuilder("1m").Build()
	assert.Error(t, err)
}

func TestBuilder_instanceOnce(t *testing.T) {
	c := counter(t, "cnt", 2)
	b := rtl.NewBuilder("top")
	b.Instance("a", c)
	b.Instance("b", c)
	_, err := b.Build()
	assert.Error(t, err)
}

func TestConnectAll_unconnected(t *testing.T) {
	b := rtl.NewBuilder("m")
	b.Input("a", 1)
	b.Output("out", 1)
	m := mustBuild(t, b)

	err := m.ConnectAll()
	var ue *rtl.UnconnectedSignalError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "m.out", ue.Signal)

	_, err = rtl.NewSimulation(m)
	assert.True(t, errors.As(err, &ue))
}

func TestConnectAll_unconnectedChildInput(t *testing.T) {
	b := rtl.NewBuilder("top")
	clk := b.Input("clk", 1)
	c := b.Instance("c", counter(t, "cnt", 2))
	b.Comb(func(x *rtl.Body) { x.Assign(c.Port("clk"), clk) })
	m := mustBuild(t, b)

	var ue *rtl.UnconnectedSignalError
	require.True(t, errors.As(m.ConnectAll(), &ue))
	assert.Equal(t, "top.c$en", ue.Signal)
	assert.Equal(t, "instance c", ue.Reader)
}

func TestConnectAll_multipleDrivers(t *testing.T) {
	b := rtl.NewBuilder("m")
	clk := b.Input("clk", 1)
	out := b.Output("out", 1)
	r := b.DFF("r", 1)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, rtl.Not(r.Q))
		c.Assign(r.Q, rtl.Lit(1, 0))
		c.Assign(out, r.Q)
	})
	m := mustBuild(t, b)

	var me *rtl.MultipleDriverError
	require.True(t, errors.As(m.ConnectAll(), &me))
	assert.Equal(t, "m.r$q", me.Signal)
	assert.Len(t, me.Drivers, 2)
}

func TestConnectAll_childOutput(t *testing.T) {
	// driving the output of a child from the parent is a second driver
	b := rtl.NewBuilder("top")
	clk, en := b.Input("clk", 1), b.Input("en", 1)
	c := b.Instance("c", counter(t, "cnt", 2))
	b.Comb(func(x *rtl.Body) {
		x.Assign(c.Port("clk"), clk)
		x.Assign(c.Port("en"), en)
		x.Assign(c.Port("out"), rtl.Lit(2, 0))
	})
	m := mustBuild(t, b)
	var me *rtl.MultipleDriverError
	assert.True(t, errors.As(m.ConnectAll(), &me))
}

func TestConnectAll_scope(t *testing.T) {
	inner := counter(t, "cnt", 2)
	mid := rtl.NewBuilder("mid")
	clk, en := mid.Input("clk", 1), mid.Input("en", 1)
	c := mid.Instance("c", inner)
	mid.Comb(func(x *rtl.Body) {
		x.Assign(c.Port("clk"), clk)
		x.Assign(c.Port("en"), en)
	})
	midM := mustBuild(t, mid)

	b := rtl.NewBuilder("top")
	b.Instance("m", midM)
	o := b.Output("o", 2)
	b.Comb(func(x *rtl.Body) { x.Assign(o, inner.Port("out")) })
	m := mustBuild(t, b)

	var se *rtl.ScopeError
	require.True(t, errors.As(m.ConnectAll(), &se))
	assert.Equal(t, "top", se.Module)
}

func bus(t *testing.T, name string, fields rtl.Fields) *rtl.Module {
	b := rtl.NewBuilder(name)
	bd := b.Bundle("bus", fields)
	b.Comb(func(c *rtl.Body) {
		for _, s := range bd.Signals() {
			if s.Dir() == rtl.Output {
				c.Assign(s, rtl.Zero(s.Width()))
			}
		}
	})
	return mustBuild(t, b)
}

func TestJoin(t *testing.T) {
	ctl := rtl.Fields{{"req", 8, rtl.Output}, {"ack", 1, rtl.Input}}

	b := rtl.NewBuilder("top")
	x := b.Instance("x", bus(t, "ctl", ctl))
	y := b.Instance("y", bus(t, "rsp", ctl.Flip()))
	require.NoError(t, b.Join(x.Bundle("bus"), y.Bundle("bus")))
	m := mustBuild(t, b)
	require.NoError(t, m.ConnectAll())

	require.Len(t, m.Nets(), 2)
	assert.Equal(t, "x$bus$req -> y$bus$req", m.Nets()[0].Name)
	assert.Equal(t, "y$bus$ack -> x$bus$ack", m.Nets()[1].Name)
	mustSim(t, m)
}

func TestJoin_mismatch(t *testing.T) {
	ctl := rtl.Fields{{"req", 8, rtl.Output}, {"ack", 1, rtl.Input}}
	td := []struct {
		name string
		rsp  rtl.Fields
	}{
		{"width", rtl.Fields{{"req", 4, rtl.Input}, {"ack", 1, rtl.Output}}},
		{"count", rtl.Fields{{"req", 8, rtl.Input}}},
		{"name", rtl.Fields{{"data", 8, rtl.Input}, {"ack", 1, rtl.Output}}},
		{"direction", ctl},
	}
	for _, d := range td {
		b := rtl.NewBuilder("top")
		x := b.Instance("x", bus(t, "ctl", ctl))
		y := b.Instance("y", bus(t, "rsp", d.rsp))
		err := b.Join(x.Bundle("bus"), y.Bundle("bus"))
		var be *rtl.BundleShapeMismatchError
		assert.True(t, errors.As(err, &be), "%s: got %v", d.name, err)
		_, err = b.Build()
		assert.Error(t, err, "%s: error must be sticky", d.name)
	}
}

func TestLink(t *testing.T) {
	rsp := rtl.Fields{{"req", 8, rtl.Input}, {"ack", 1, rtl.Output}}

	b := rtl.NewBuilder("wrap")
	own := b.Bundle("port", rsp)
	c := b.Instance("inner", bus(t, "rsp", rsp))
	require.NoError(t, b.Link(own, c.Bundle("bus")))
	m := mustBuild(t, b)
	require.NoError(t, m.ConnectAll())
	assert.Equal(t, "port$req -> inner$bus$req", m.Nets()[0].Name)
	assert.Equal(t, "inner$bus$ack -> port$ack", m.Nets()[1].Name)

	// flipped directions are rejected
	b = rtl.NewBuilder("wrap")
	own = b.Bundle("port", rsp)
	c = b.Instance("inner", bus(t, "ctl", rsp.Flip()))
	var be *rtl.BundleShapeMismatchError
	assert.True(t, errors.As(b.Link(own, c.Bundle("bus")), &be))
}

func TestParsePorts(t *testing.T) {
	td := []struct {
		in   string
		want []rtl.PortSpec
		err  bool
	}{
		{"", nil, false},
		{"a", []rtl.PortSpec{{"a", 1}}, false},
		{"a, bus[8], c", []rtl.PortSpec{{"a", 1}, {"bus", 8}, {"c", 1}}, false},
		{"a b", nil, true},
		{"a[", nil, true},
		{"a[0]", nil, true},
		{"a[65]", nil, true},
		{"a[4", nil, true},
		{"a,", nil, true},
	}
	for _, d := range td {
		got, err := rtl.ParsePorts(d.in)
		if d.err {
			assert.Error(t, err, "%q", d.in)
			continue
		}
		require.NoError(t, err, "%q", d.in)
		assert.Equal(t, d.want, got, "%q", d.in)
	}
}
