// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// Direction is the direction of a signal as seen from the module that owns it.
//
type Direction int

// Signal directions.
const (
	Internal Direction = iota
	Input
	Output
	InOut
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	}
	return "internal"
}

// Flip returns the mirror direction: Input and Output are swapped.
//
func (d Direction) Flip() Direction {
	switch d {
	case Input:
		return Output
	case Output:
		return Input
	}
	return d
}

// A Signal is a typed wire of fixed width.
//
// Signals do not hold values: a Simulation keeps the current and pending
// values of every signal of the design it simulates. Signals are created by a
// Builder and owned by the module under construction.
//
// A Signal is also an Expr that reads its current value.
//
type Signal struct {
	name  string
	width int
	dir   Direction
	owner *Module
}

// Name returns the signal name within its module.
func (s *Signal) Name() string { return s.name }

// Width returns the signal width in bits.
func (s *Signal) Width() int { return s.width }

// Dir returns the signal direction.
func (s *Signal) Dir() Direction { return s.dir }

// Owner returns the module that declares s.
func (s *Signal) Owner() *Module { return s.owner }

// IsPort reports whether s is part of its module's interface.
func (s *Signal) IsPort() bool { return s.dir != Internal }

// Eval implements Expr.
func (s *Signal) Eval(v Values) Bits { return v.Value(s) }

func (s *Signal) String() string {
	if s.owner == nil {
		return s.name
	}
	return s.owner.name + "." + s.name
}
