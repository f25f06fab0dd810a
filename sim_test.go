// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl_test

import (
	"strconv"
	"testing"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func mustBuild(t *testing.T, b *rtl.Builder) *rtl.Module {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return m
}

func mustSim(t *testing.T, m *rtl.Module, opts ...rtl.Option) *rtl.Simulation {
	t.Helper()
	s, err := rtl.NewSimulation(m, opts...)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return s
}

// counter returns a width bit counter that increments on every clock edge
// where en is high.
func counter(t *testing.T, name string, width int) *rtl.Module {
	b := rtl.NewBuilder(name)
	clk, en := b.Input("clk", 1), b.Input("en", 1)
	out := b.Output("out", width)
	r := b.DFF("r", width)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, r.Q)
		c.If(en, func(c *rtl.Body) {
			c.Assign(r.D, rtl.Add(r.Q, rtl.Lit(width, 1)))
		}, nil)
		c.Assign(out, r.Q)
	})
	return mustBuild(t, b)
}

func TestSimulation_dffHoldsConstant(t *testing.T) {
	b := rtl.NewBuilder("hold")
	clk := b.Input("clk", 1)
	out := b.Output("out", 8)
	r := b.DFF("r", 8)
	k := b.Constant("k", rtl.MustBits(8, 5))
	b.Comb(func(c *rtl.Body) {
		c.Assign(r.Clk, clk)
		c.Assign(r.D, k)
		c.Assign(out, r.Q)
	})
	s := mustSim(t, mustBuild(t, b))

	assert.Equal(t, rtl.Zero(8), s.Read(out))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Cycle(clk))
		assert.Equal(t, rtl.MustBits(8, 5), s.Read(out), "cycle %d", i)
	}
	assert.Equal(t, uint64(6), s.Time())
	assert.Equal(t, uint64(6), s.Steps())
}

func TestSimulation_counter(t *testing.T) {
	m := counter(t, "cnt", 4)
	clk, en, out := m.Port("clk"), m.Port("en"), m.Port("out")
	s := mustSim(t, m)

	require.NoError(t, s.Cycles(clk, 3))
	assert.Equal(t, rtl.Zero(4), s.Read(out), "counter must not count while disabled")

	require.NoError(t, s.Inject(en, rtl.Bit(true)))
	for i := 1; i <= 20; i++ {
		require.NoError(t, s.Cycle(clk))
		assert.Equal(t, uint64(i%16), s.Read(out).Uint64(), "cycle %d", i)
	}
}

func TestSimulation_dffSamplesPreEdgeValue(t *testing.T) {
	// a two stage shift register: the second stage must lag the first by one
	// cycle.
	b := rtl.NewBuilder("shift")
	clk, in := b.Input("clk", 1), b.Input("in", 1)
	q0, q1 := b.Output("q0", 1), b.Output("q1", 1)
	r0, r1 := b.DFF("r0", 1), b.DFF("r1", 1)
	b.Comb(func(c *rtl.Body) {
		c.Assign(r0.Clk, clk)
		c.Assign(r1.Clk, clk)
		c.Assign(r0.D, in)
		c.Assign(r1.D, r0.Q)
		c.Assign(q0, r0.Q)
		c.Assign(q1, r1.Q)
	})
	s := mustSim(t, mustBuild(t, b))

	require.NoError(t, s.Inject(in, rtl.Bit(true)))
	require.NoError(t, s.Cycle(clk))
	assert.True(t, s.Read(q0).Bool())
	assert.False(t, s.Read(q1).Bool())
	require.NoError(t, s.Inject(in, rtl.Bit(false)))
	require.NoError(t, s.Cycle(clk))
	assert.False(t, s.Read(q0).Bool())
	assert.True(t, s.Read(q1).Bool())
}

func TestSimulation_hierarchy(t *testing.T) {
	b := rtl.NewBuilder("top")
	clk := b.Input("clk", 1)
	out := b.Output("out", 4)
	c0 := b.Instance("c0", counter(t, "cnt", 4))
	b.Comb(func(c *rtl.Body) {
		c.Assign(c0.Port("clk"), clk)
		c.Assign(c0.Port("en"), rtl.Lit(1, 1))
		c.Assign(out, c0.Port("out"))
	})
	s := mustSim(t, mustBuild(t, b))
	require.NoError(t, s.Cycles(clk, 5))
	assert.Equal(t, rtl.MustBits(4, 5), s.Read(out))
}

func TestSimulation_notConverged(t *testing.T) {
	b := rtl.NewBuilder("ring")
	out := b.Output("out", 1)
	x := b.Local("x", 1)
	b.Comb(func(c *rtl.Body) {
		c.Assign(x, rtl.Not(x))
		c.Assign(out, x)
	})
	s := mustSim(t, mustBuild(t, b), rtl.WithConfig(rtl.SimConfig{MaxIterations: 10, StepTime: 1}))

	err := s.Step()
	var nc *rtl.NotConvergedError
	require.True(t, errors.As(err, &nc), "got %v", err)
	assert.Equal(t, len(s.Signals())+10, nc.Iterations)
	assert.Contains(t, nc.Signals, "ring.x")

	// errors are sticky
	assert.Equal(t, err, s.Step())
	_, ferr := s.Finish()
	assert.Equal(t, err, ferr)
}

// A feed-forward chain much deeper than MaxIterations must settle in a single
// step, whatever the order of its statements.
func TestSimulation_deepChain(t *testing.T) {
	const depth = 70
	b := rtl.NewBuilder("chain")
	in := b.Input("in", 1)
	out := b.Output("out", 1)
	l := make([]*rtl.Signal, depth)
	for i := range l {
		l[i] = b.Local("l"+strconv.Itoa(i), 1)
	}
	b.Comb(func(c *rtl.Body) {
		c.Assign(out, l[depth-1])
		for i := depth - 1; i > 0; i-- {
			c.Assign(l[i], l[i-1])
		}
		c.Assign(l[0], in)
	})
	s := mustSim(t, mustBuild(t, b), rtl.WithConfig(rtl.SimConfig{MaxIterations: 4, StepTime: 1}))

	for _, v := range []bool{true, false, true} {
		require.NoError(t, s.Inject(in, rtl.Bit(v)))
		require.NoError(t, s.Step())
		assert.Equal(t, rtl.Bit(v), s.Read(out))
	}
}

func TestSimulation_logFields(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	m := counter(t, "cnt", 4)
	s := mustSim(t, m, rtl.WithLogger(log))
	require.NoError(t, s.Step())

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "settled", e.Message)
	assert.Equal(t, uint64(0), e.Data["sim_time"])
	assert.Equal(t, "cnt", e.Data["design"])
	assert.NotContains(t, e.Data, "time")
}

func TestSimulation_injectAfterFinish(t *testing.T) {
	m := counter(t, "cnt", 4)
	s := mustSim(t, m)
	require.NoError(t, s.Inject(m.Port("en"), rtl.Bit(true)))
	_, err := s.Finish()
	require.NoError(t, err)

	err = s.Inject(m.Port("en"), rtl.Bit(false))
	require.Error(t, err)
	assert.Equal(t, s.Step().Error(), err.Error())
	assert.Equal(t, rtl.Bit(false), s.Read(m.Port("en")))
}

func TestSimulation_inject(t *testing.T) {
	m := counter(t, "cnt", 4)
	s := mustSim(t, m)

	var wm *rtl.WidthMismatchError
	assert.True(t, errors.As(s.Inject(m.Port("en"), rtl.Zero(2)), &wm))
	assert.Error(t, s.Inject(m.Port("out"), rtl.Zero(4)), "outputs cannot be injected")

	other := counter(t, "other", 4)
	assert.Error(t, s.Inject(other.Port("en"), rtl.Bit(true)), "foreign signal")
	assert.Panics(t, func() { s.Read(other.Port("out")) })
}

func TestSimulation_determinism(t *testing.T) {
	run := func() []rtl.TraceEvent {
		m := counter(t, "cnt", 3)
		s := mustSim(t, m)
		require.NoError(t, s.Inject(m.Port("en"), rtl.Bit(true)))
		require.NoError(t, s.Cycles(m.Port("clk"), 10))
		evs, err := s.Finish()
		require.NoError(t, err)
		return evs
	}
	a, b := run(), run()
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
}

type memTracer struct {
	sigs   []rtl.TraceSignal
	events []rtl.TraceEvent
	fail   error
	closed bool
}

func (m *memTracer) Begin(sigs []rtl.TraceSignal) error { m.sigs = sigs; return nil }
func (m *memTracer) Change(e rtl.TraceEvent) error {
	if m.fail != nil {
		return m.fail
	}
	m.events = append(m.events, e)
	return nil
}
func (m *memTracer) Close() error { m.closed = true; return nil }

func TestSimulation_tracer(t *testing.T) {
	m := counter(t, "cnt", 2)
	tr := &memTracer{}
	s := mustSim(t, m, rtl.WithTracer(tr))

	require.Len(t, tr.sigs, len(m.Signals()))
	assert.Equal(t, []string{"cnt"}, tr.sigs[0].Scope)
	assert.Equal(t, "clk", tr.sigs[0].Name)

	require.NoError(t, s.Inject(m.Port("en"), rtl.Bit(true)))
	require.NoError(t, s.Cycles(m.Port("clk"), 4))
	evs, err := s.Finish()
	require.NoError(t, err)
	assert.True(t, tr.closed)
	assert.Equal(t, evs, tr.events)

	var last uint64
	for _, e := range evs {
		assert.True(t, e.Time >= last, "events out of order")
		last = e.Time
	}
}

func TestSimulation_tracerError(t *testing.T) {
	m := counter(t, "cnt", 2)
	tr := &memTracer{fail: errors.New("disk full")}
	s := mustSim(t, m, rtl.WithTracer(tr))

	require.NoError(t, s.Inject(m.Port("en"), rtl.Bit(true)))
	err := s.Cycle(m.Port("clk"))
	var ioe *rtl.IOError
	require.True(t, errors.As(err, &ioe), "got %v", err)
	assert.EqualError(t, ioe.Err, "disk full")
}

type parity struct {
	x *rtl.Signal
}

func (p parity) Width() int { return 1 }
func (p parity) Eval(v rtl.Values) rtl.Bits {
	r, _ := v.Value(p.x).Unary(rtl.OpXorR)
	return r
}
func (p parity) Refs() []*rtl.Signal { return []*rtl.Signal{p.x} }

func TestSimulation_customExpr(t *testing.T) {
	b := rtl.NewBuilder("par")
	in := b.Input("in", 8)
	out := b.Output("out", 1)
	b.Comb(func(c *rtl.Body) { c.Assign(out, parity{in}) })
	s := mustSim(t, mustBuild(t, b))

	for _, v := range []uint64{0, 1, 3, 7, 0xff, 0xfe} {
		require.NoError(t, s.Inject(in, rtl.MustBits(8, v)))
		require.NoError(t, s.Step())
		want, _ := rtl.MustBits(8, v).Unary(rtl.OpXorR)
		assert.Equal(t, want, s.Read(out), "parity(%#x)", v)
	}
}

func TestSimulation_source(t *testing.T) {
	b := rtl.NewBuilder("gen")
	out := b.Output("out", 8)
	src := b.Source("ramp", 8, func(t uint64) rtl.Bits { return rtl.MustBits(8, t&0xff) })
	b.Comb(func(c *rtl.Body) { c.Assign(out, src) })
	s := mustSim(t, mustBuild(t, b), rtl.WithConfig(rtl.SimConfig{MaxIterations: 8, StepTime: 10}))

	for i := uint64(0); i < 4; i++ {
		require.NoError(t, s.Step())
		assert.Equal(t, i*10, s.Read(out).Uint64())
	}
}
