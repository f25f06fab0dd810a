// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// A TraceSignal describes a traced signal.
//
type TraceSignal struct {
	ID    int
	Scope []string // instance path, top-level module first
	Name  string
	Width int
	Init  Bits
}

// A TraceEvent records a committed value change.
//
type TraceEvent struct {
	Time  uint64
	ID    int
	Value Bits
}

// A Tracer receives the value changes of a simulation.
//
// Begin is called once with every signal of the design before any event.
// Change is called for each committed change, in non-decreasing time order.
// Any error returned is fatal to the simulation.
//
type Tracer interface {
	Begin(signals []TraceSignal) error
	Change(e TraceEvent) error
	Close() error
}
