// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing modules.
//
package hwtest

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/vcd"
)

func randBits(r *rand.Rand, w int) rtl.Bits {
	v := r.Uint64()
	if w < 64 {
		v &= 1<<uint(w) - 1
	}
	return rtl.MustBits(w, v)
}

func ones(w int) rtl.Bits {
	return rtl.Zero(w).Not()
}

// comparePorts checks that m1 and m2 have the same interface.
func comparePorts(m1, m2 *rtl.Module) error {
	p1, p2 := m1.Ports(), m2.Ports()
	if len(p1) != len(p2) {
		return fmt.Errorf("%s has %d ports, %s has %d", m1.Name(), len(p1), m2.Name(), len(p2))
	}
	for i := range p1 {
		a, b := p1[i], p2[i]
		if a.Name() != b.Name() || a.Width() != b.Width() || a.Dir() != b.Dir() {
			return fmt.Errorf("port %d: %s %s[%d] != %s %s[%d]", i, a.Dir(), a.Name(), a.Width(), b.Dir(), b.Name(), b.Width())
		}
	}
	return nil
}

// CompareModules takes two modules and compares their outputs given the same
// inputs. Both modules must have the same ports, in the same order.
//
// Inputs are set to all zeroes, all ones, then iter random values. If clock
// names an input port, it is excluded from the random inputs and each set of
// inputs is followed by a full clock cycle. Otherwise each set of inputs is
// followed by a single simulation step.
//
func CompareModules(t testing.TB, iter int, clock string, m1, m2 *rtl.Module) {
	t.Helper()

	if err := comparePorts(m1, m2); err != nil {
		t.Fatal(err)
	}
	s1, err := rtl.NewSimulation(m1)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := rtl.NewSimulation(m2)
	if err != nil {
		t.Fatal(err)
	}

	var (
		in1, in2   []*rtl.Signal
		out1, out2 []*rtl.Signal
		clk1, clk2 *rtl.Signal
	)
	p1, p2 := m1.Ports(), m2.Ports()
	for i, p := range p1 {
		switch {
		case p.Name() == clock && p.Dir() == rtl.Input:
			clk1, clk2 = p, p2[i]
		case p.Dir() == rtl.Input:
			in1, in2 = append(in1, p), append(in2, p2[i])
		case p.Dir() == rtl.Output:
			out1, out2 = append(out1, p), append(out2, p2[i])
		}
	}
	if clock != "" && clk1 == nil {
		t.Fatalf("%s has no %s input", m1.Name(), clock)
	}

	seed := time.Now().UnixNano()
	t.Logf("seed: %d", seed)
	r := rand.New(rand.NewSource(seed))

	values := make([]rtl.Bits, len(in1))
	errString := func(o int, ex, got rtl.Bits) string {
		var b strings.Builder
		for i, s := range in1 {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.Name())
			b.WriteRune('=')
			b.WriteString(values[i].String())
		}
		return fmt.Sprintf("\nExpected %s => %s=%v\nGot %v", b.String(), out1[o].Name(), ex, got)
	}
	run := func(s *rtl.Simulation, in []*rtl.Signal, clk *rtl.Signal) {
		t.Helper()
		for i, sig := range in {
			if err := s.Inject(sig, values[i]); err != nil {
				t.Fatal(err)
			}
		}
		if clk != nil {
			err = s.Cycle(clk)
		} else {
			err = s.Step()
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	start := time.Now()
	for n := -2; n < iter; n++ {
		for i, s := range in1 {
			switch n {
			case -2:
				values[i] = rtl.Zero(s.Width())
			case -1:
				values[i] = ones(s.Width())
			default:
				values[i] = randBits(r, s.Width())
			}
		}
		run(s1, in1, clk1)
		run(s2, in2, clk2)
		for o := range out1 {
			ex, got := s1.Read(out1[o]), s2.Read(out2[o])
			if ex != got {
				t.Fatal(errString(o, ex, got))
			}
		}
	}
	elapsed := time.Since(start)
	t.Logf("%d components. %d steps in %v", s1.Size()+s2.Size(), s1.Steps()+s2.Steps(), elapsed)
}

// CheckDeterminism builds two instances of a design with build, runs the same
// stimulus against both with a VCD tracer and fails the test if the two traces
// differ in any way.
//
func CheckDeterminism(t testing.TB, build func() (*rtl.Module, error), stimulus func(*rtl.Simulation) error) {
	t.Helper()
	var traces [2]bytes.Buffer
	for i := range traces {
		m, err := build()
		if err != nil {
			t.Fatal(err)
		}
		s, err := rtl.NewSimulation(m, rtl.WithTracer(vcd.NewWriter(&traces[i], vcd.Options{})))
		if err != nil {
			t.Fatal(err)
		}
		err = stimulus(s)
		if _, ferr := s.Finish(); err == nil {
			err = ferr
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(traces[0].Bytes(), traces[1].Bytes()) {
		t.Fatalf("traces differ:\n%s\n---\n%s", traces[0].String(), traces[1].String())
	}
}
