// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"strconv"
	"strings"
)

// A WidthError is returned when a bit vector or signal is declared with an
// invalid width.
//
type WidthError struct {
	Width int
}

func (e *WidthError) Error() string {
	return "invalid width " + strconv.Itoa(e.Width) + " (must be in 1.." + strconv.Itoa(MaxWidth) + ")"
}

// A WidthMismatchError is returned by operations on operands of different
// widths.
//
type WidthMismatchError struct {
	Op          string
	Left, Right int
}

func (e *WidthMismatchError) Error() string {
	return "width mismatch in " + e.Op + ": " + strconv.Itoa(e.Left) + " != " + strconv.Itoa(e.Right)
}

// A RangeError is returned when a bit index or slice bound falls outside of a
// vector.
//
type RangeError struct {
	Index, Width int
}

func (e *RangeError) Error() string {
	return "index " + strconv.Itoa(e.Index) + " out of range for width " + strconv.Itoa(e.Width)
}

// An UnconnectedSignalError is returned by ConnectAll when a signal is read but
// nothing drives it.
//
type UnconnectedSignalError struct {
	Signal string
	Reader string
}

func (e *UnconnectedSignalError) Error() string {
	return "signal " + e.Signal + " read by " + e.Reader + " is not driven"
}

// A MultipleDriverError is returned by ConnectAll when a signal has more than
// one driver or is written by a unit that does not own it.
//
type MultipleDriverError struct {
	Signal  string
	Drivers []string
}

func (e *MultipleDriverError) Error() string {
	return "signal " + e.Signal + " has multiple drivers: " + strings.Join(e.Drivers, ", ")
}

// A ScopeError is returned when a module references a signal that is neither
// its own nor a port of one of its direct children.
//
type ScopeError struct {
	Module string
	Signal string
}

func (e *ScopeError) Error() string {
	return "signal " + e.Signal + " is not visible from module " + e.Module
}

// A BundleShapeMismatchError is returned by Join and Link when two bundles do
// not declare the same fields.
//
type BundleShapeMismatchError struct {
	A, B   string
	Reason string
}

func (e *BundleShapeMismatchError) Error() string {
	return "bundle " + e.A + " does not match " + e.B + ": " + e.Reason
}

// An OverlapError is returned when address ranges overlap or are empty.
//
type OverlapError struct {
	Index, Other int
	Reason       string
}

func (e *OverlapError) Error() string {
	if e.Other < 0 {
		return "range " + strconv.Itoa(e.Index) + ": " + e.Reason
	}
	return "range " + strconv.Itoa(e.Index) + " overlaps range " + strconv.Itoa(e.Other) + ": " + e.Reason
}

// A NotConvergedError is returned by Simulation.Step when combinational logic
// does not settle within the iteration budget.
//
type NotConvergedError struct {
	Iterations int
	Time       uint64
	Signals    []string // signals still changing on the last pass
}

func (e *NotConvergedError) Error() string {
	s := "simulation did not converge after " + strconv.Itoa(e.Iterations) + " iterations at time " + strconv.FormatUint(e.Time, 10)
	if len(e.Signals) > 0 {
		s += "; oscillating: " + strings.Join(e.Signals, ", ")
	}
	return s
}

// An UnsupportedConstructError is returned by code generators for logic that
// can be simulated but not rendered.
//
type UnsupportedConstructError struct {
	Unit      string
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return "unsupported construct in " + e.Unit + ": " + e.Construct
}

// A ValidationError carries the verbatim diagnostic of an external synthesis
// tool.
//
type ValidationError struct {
	Name   string
	Output string
}

func (e *ValidationError) Error() string {
	return "validation of " + e.Name + " failed:\n" + e.Output
}

// An IOError wraps a trace write failure. It is fatal to a simulation.
//
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

// Cause returns the underlying error.
func (e *IOError) Cause() error { return e.Err }
