// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Simulation is a runnable simulation of a module hierarchy.
//
// Every signal has three values: the committed value, observable with Read;
// the current value, read by components while the design settles; and the
// pending value proposed by the signal's driver. Step runs components until
// no pending value differs from the current one, then commits the current
// values and records the changes.
//
// A Simulation is single-threaded and fully deterministic: for a given design
// and stimulus, it always produces the same sequence of trace events.
//
type Simulation struct {
	top    *Module
	cfg    SimConfig
	log    logrus.FieldLogger
	tracer Tracer

	pins   map[*Signal]int
	sigs   []*Signal
	scopes [][]string
	inits  []pinValue
	val    []uint64 // committed values
	cur    []uint64 // current values
	next   []uint64 // pending values
	cs     []Component

	changed *bitset.BitSet
	time    uint64
	steps   uint64
	events  []TraceEvent
	err     error
	closed  bool
}

// An Option configures a Simulation.
//
type Option func(*Simulation)

// WithConfig sets the simulation parameters.
func WithConfig(cfg SimConfig) Option { return func(s *Simulation) { s.cfg = cfg } }

// WithLogger sets the logger used by the simulation.
func WithLogger(l logrus.FieldLogger) Option { return func(s *Simulation) { s.log = l } }

// WithTracer streams every committed value change to t.
func WithTracer(t Tracer) Option { return func(s *Simulation) { s.tracer = t } }

// NewSimulation checks the wiring of top with ConnectAll and builds a
// simulation for it. Signals start at zero, except constants and flip flops
// which start at their declared value.
//
func NewSimulation(top *Module, opts ...Option) (*Simulation, error) {
	if top == nil {
		return nil, errors.New("nil module")
	}
	if err := top.ConnectAll(); err != nil {
		return nil, err
	}
	s := &Simulation{
		top:  top,
		cfg:  DefaultSimConfig(),
		log:  logrus.StandardLogger(),
		pins: make(map[*Signal]int),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid simulation config")
	}
	s.log = s.log.WithField("design", top.name)

	s.cs = top.Mount(newSocket(s, top.name))
	n := len(s.sigs)
	s.val = make([]uint64, n)
	s.cur = make([]uint64, n)
	s.next = make([]uint64, n)
	for _, i := range s.inits {
		s.val[i.pin], s.cur[i.pin], s.next[i.pin] = i.v, i.v, i.v
	}
	s.changed = bitset.New(uint(n))

	if s.tracer != nil {
		if err := s.tracer.Begin(s.Signals()); err != nil {
			return nil, ioError("trace header", err)
		}
	}
	s.log.Debugf("simulation ready: %d signals, %d components", n, len(s.cs))
	return s, nil
}

var errFinished = errors.New("simulation finished")

func ioError(op string, err error) error {
	var e *IOError
	if errors.As(err, &e) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// Signals returns the description of every simulated signal, indexed by pin
// number.
//
func (s *Simulation) Signals() []TraceSignal {
	r := make([]TraceSignal, len(s.sigs))
	for i, sig := range s.sigs {
		r[i] = TraceSignal{
			ID:    i,
			Scope: s.scopes[i],
			Name:  sig.name,
			Width: sig.width,
			Init:  Bits{uint8(sig.width), s.val[i]},
		}
	}
	return r
}

// Size returns the component count in the simulation.
//
func (s *Simulation) Size() int { return len(s.cs) }

// Time returns the current simulated time.
//
func (s *Simulation) Time() uint64 { return s.time }

// Steps returns the number of completed steps.
//
func (s *Simulation) Steps() uint64 { return s.steps }

// Advance moves simulated time forward by dt without evaluating anything.
//
func (s *Simulation) Advance(dt uint64) { s.time += dt }

// Get returns the current value of pin n. The value of n should be obtained
// in a Mount function by a call to Socket.Pin.
//
func (s *Simulation) Get(n int) Bits {
	return Bits{uint8(s.sigs[n].width), s.cur[n]}
}

// Committed returns the value pin n had at the end of the previous step.
//
func (s *Simulation) Committed(n int) Bits {
	return Bits{uint8(s.sigs[n].width), s.val[n]}
}

// Set proposes the next value of pin n. v is truncated to the pin width.
//
func (s *Simulation) Set(n int, v Bits) {
	s.next[n] = v.v & mask(s.sigs[n].width)
}

// Rising reports whether pin n transitions from 0 to 1 during the current
// step.
//
func (s *Simulation) Rising(n int) bool { return s.rising(n) }

func (s *Simulation) rising(n int) bool {
	return s.cur[n]&1 != 0 && s.val[n]&1 == 0
}

func (s *Simulation) pin(sig *Signal) (int, error) {
	n, ok := s.pins[sig]
	if !ok {
		return 0, errors.Errorf("signal %s is not part of the simulation", sig)
	}
	return n, nil
}

// Inject forces the value of an input port of the top-level module. The
// value is seen by the next Step.
//
func (s *Simulation) Inject(sig *Signal, v Bits) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return errFinished
	}
	n, err := s.pin(sig)
	if err != nil {
		return err
	}
	if sig.owner != s.top || (sig.dir != Input && sig.dir != InOut) {
		return errors.Errorf("cannot inject %s: not an input of %s", sig, s.top.name)
	}
	if v.Width() != sig.width {
		return errors.Wrapf(&WidthMismatchError{Op: "inject", Left: sig.width, Right: v.Width()}, "inject %s", sig)
	}
	s.cur[n], s.next[n] = v.v, v.v
	return nil
}

// Read returns the committed value of sig. It panics if sig is not part of
// the simulation.
//
func (s *Simulation) Read(sig *Signal) Bits {
	n, err := s.pin(sig)
	if err != nil {
		panic(err)
	}
	return s.Committed(n)
}

// Step runs one simulation phase: it settles combinational logic with the
// injected stimulus, commits the settled values, records every change and
// advances time by the configured step time.
//
// Errors are fatal: once Step has failed, every subsequent call returns the
// same error.
//
func (s *Simulation) Step() error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return errFinished
	}
	passes, err := s.settle()
	if err != nil {
		s.err = err
		s.log.WithField("sim_time", s.time).Warn(err)
		return err
	}
	s.log.WithFields(logrus.Fields{"sim_time": s.time, "passes": passes}).Trace("settled")
	if err = s.commit(); err != nil {
		s.err = err
		return err
	}
	s.time += s.cfg.StepTime
	s.steps++
	return nil
}

// settle runs every component until the design is stable.
//
// Each pass moves values one combinational hop forward, so an acyclic design
// settles in at most one pass per signal plus a final quiet pass. The pass
// budget is the signal count plus MaxIterations; the last MaxIterations passes
// only happen when a loop is still toggling, and serve to find the signals
// that actually take a value twice.
//
func (s *Simulation) settle() (int, error) {
	limit := len(s.sigs) + s.cfg.MaxIterations
	window := limit - s.cfg.MaxIterations
	var seen map[int]map[uint64]bool
	loops := bitset.New(uint(len(s.sigs)))
	for pass := 1; ; pass++ {
		for _, c := range s.cs {
			c(s)
		}
		s.changed.ClearAll()
		for i, v := range s.next {
			if v != s.cur[i] {
				s.changed.Set(uint(i))
			}
		}
		if pass > window {
			if seen == nil {
				seen = make(map[int]map[uint64]bool)
			}
			for i, ok := s.changed.NextSet(0); ok; i, ok = s.changed.NextSet(i + 1) {
				vs := seen[int(i)]
				if vs == nil {
					vs = map[uint64]bool{s.cur[i]: true}
					seen[int(i)] = vs
				}
				if vs[s.next[i]] {
					loops.Set(i)
				}
				vs[s.next[i]] = true
			}
		}
		copy(s.cur, s.next)
		if s.changed.None() {
			return pass, nil
		}
		if pass >= limit {
			e := &NotConvergedError{Iterations: pass, Time: s.time}
			if loops.None() {
				loops = s.changed
			}
			for i, ok := loops.NextSet(0); ok; i, ok = loops.NextSet(i + 1) {
				e.Signals = append(e.Signals, s.path(int(i)))
			}
			return pass, e
		}
	}
}

func (s *Simulation) commit() error {
	for i, v := range s.cur {
		if v == s.val[i] {
			continue
		}
		s.val[i] = v
		e := TraceEvent{Time: s.time, ID: i, Value: Bits{uint8(s.sigs[i].width), v}}
		s.events = append(s.events, e)
		if s.tracer != nil {
			if err := s.tracer.Change(e); err != nil {
				return ioError("trace", err)
			}
		}
	}
	return nil
}

func (s *Simulation) path(n int) string {
	p := ""
	for _, sc := range s.scopes[n] {
		p += sc + "."
	}
	return p + s.sigs[n].name
}

// Cycle runs a full clock cycle on clk, which must be an input of the
// top-level module: one step with clk low, then one with clk high. Flip
// flops clocked by clk update during the second step.
//
func (s *Simulation) Cycle(clk *Signal) error {
	for _, v := range []bool{false, true} {
		if err := s.Inject(clk, Bit(v)); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Cycles runs n clock cycles.
//
func (s *Simulation) Cycles(clk *Signal, n int) error {
	for ; n > 0; n-- {
		if err := s.Cycle(clk); err != nil {
			return err
		}
	}
	return nil
}

// Finish closes the tracer, if any, and returns every recorded trace event
// along with the first error encountered during the simulation.
//
func (s *Simulation) Finish() ([]TraceEvent, error) {
	if !s.closed {
		s.closed = true
		if s.tracer != nil {
			if err := s.tracer.Close(); err != nil && s.err == nil {
				s.err = ioError("trace close", err)
			}
		}
	}
	return s.events, s.err
}
