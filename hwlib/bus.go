// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/rtl"
	"github.com/pkg/errors"
)

// SoC bus field names.
const (
	BusAddress        = "address"
	BusAddressStrobe  = "address_strobe"
	BusFromController = "from_controller"
	BusToController   = "to_controller"
	BusReady          = "ready"
	BusStrobe         = "strobe"
	BusClock          = "clock"
)

// Controller returns the controller side of a SoC bus with the given data and
// address widths. The controller drives the clock, the address and its strobe,
// and the data strobe; the responder drives the returned data and ready.
//
// A transaction selects a responder by presenting an address with
// address_strobe high for one cycle. Data is then written by presenting
// from_controller with strobe high, and read from to_controller while ready
// is high.
//
func Controller(dataWidth, addrWidth int) rtl.Fields {
	return rtl.Fields{
		{Name: BusAddress, Width: addrWidth, Dir: rtl.Output},
		{Name: BusAddressStrobe, Width: 1, Dir: rtl.Output},
		{Name: BusFromController, Width: dataWidth, Dir: rtl.Output},
		{Name: BusToController, Width: dataWidth, Dir: rtl.Input},
		{Name: BusReady, Width: 1, Dir: rtl.Input},
		{Name: BusStrobe, Width: 1, Dir: rtl.Output},
		{Name: BusClock, Width: 1, Dir: rtl.Output},
	}
}

// Responder returns the responder side of a SoC bus, the flip of Controller.
//
func Responder(dataWidth, addrWidth int) rtl.Fields {
	return Controller(dataWidth, addrWidth).Flip()
}

// OutputPort returns a write-only bus port mapped at address addr of its
// responder bundle.
//
//	Bundles: bus (Responder)
//	Inputs: ready
//	Outputs: port_out[dataWidth], strobe_out
//	Function: the port is selected when address_strobe is high and address == addr,
//	          and deselected by any other address strobe. While selected, a bus strobe
//	          latches from_controller into port_out and pulses strobe_out for one
//	          cycle. bus.ready follows ready while selected.
//
func OutputPort(name string, dataWidth, addrWidth int, addr uint64) (*rtl.Module, error) {
	a, err := rtl.NewBits(addrWidth, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "port %s: address", name)
	}
	b := rtl.NewBuilder(name)
	bus := b.Bundle("bus", Responder(dataWidth, addrWidth))
	ready := b.Input(BusReady, 1)
	out, strobeOut := b.Output("port_out", dataWidth), b.Output("strobe_out", 1)
	active, state, strobe := b.DFF("active", 1), b.DFF("state", dataWidth), b.DFF("strobe", 1)
	sig := bus.Signal
	b.Comb(func(c *rtl.Body) {
		for _, d := range []*rtl.DFF{active, state, strobe} {
			c.Assign(d.Clk, sig(BusClock))
		}
		c.Assign(active.D, active.Q)
		c.If(sig(BusAddressStrobe), func(c *rtl.Body) {
			c.Assign(active.D, rtl.Eq(sig(BusAddress), a))
		}, nil)
		c.Assign(state.D, state.Q)
		c.Assign(strobe.D, rtl.Zero(1))
		c.If(rtl.And(active.Q, sig(BusStrobe)), func(c *rtl.Body) {
			c.Assign(state.D, sig(BusFromController))
			c.Assign(strobe.D, rtl.Bit(true))
		}, nil)
		c.Assign(sig(BusReady), rtl.And(active.Q, ready))
		c.Assign(sig(BusToController), rtl.Zero(dataWidth))
		c.Assign(out, state.Q)
		c.Assign(strobeOut, strobe.Q)
	})
	return b.Build()
}
