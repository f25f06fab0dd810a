// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/rtl"
	"github.com/pkg/errors"
)

// A Range is a half open address range [Start, End).
//
type Range struct {
	Start uint64 `yaml:"start"`
	End   uint64 `yaml:"end"`
}

// Contains reports whether r contains addr.
func (r Range) Contains(addr uint64) bool { return r.Start <= addr && addr < r.End }

func (r Range) String() string {
	return "[" + strconv.FormatUint(r.Start, 10) + ", " + strconv.FormatUint(r.End, 10) + ")"
}

// checkRanges validates a router address map: every range must be non-empty,
// fit in the address space and not overlap any other range.
//
func checkRanges(addrWidth int, ranges []Range) error {
	if len(ranges) == 0 {
		return errors.New("no address range")
	}
	top := uint64(1) << uint(addrWidth)
	for i, r := range ranges {
		switch {
		case r.End <= r.Start:
			return &rtl.OverlapError{Index: i, Other: -1, Reason: "empty range " + r.String()}
		case r.End > top:
			return &rtl.OverlapError{Index: i, Other: -1, Reason: r.String() + " exceeds the " + strconv.Itoa(addrWidth) + " bits address space"}
		}
		for j, o := range ranges[:i] {
			if r.Start < o.End && o.Start < r.End {
				return &rtl.OverlapError{Index: i, Other: j, Reason: r.String() + " intersects " + o.String()}
			}
		}
	}
	return nil
}

// RangesFromCounts returns contiguous address ranges starting at 0, with
// counts[i] addresses assigned to node i.
//
func RangesFromCounts(counts []uint64) []Range {
	rs := make([]Range, len(counts))
	var offset uint64
	for i, c := range counts {
		rs[i] = Range{offset, offset + c}
		offset += c
	}
	return rs
}

// node returns the name of the i-th downstream bundle of a router.
func node(i int) string { return "node" + strconv.Itoa(i) }

// NewRouter returns a bus router connecting a single upstream controller to
// len(ranges) downstream responders. Node i is mapped at ranges[i] and sees
// addresses relative to ranges[i].Start. Routers can be stacked.
//
//	Bundles: upstream (Responder), node0, node1, ... (Controller)
//	Function: when upstream.address_strobe is high and upstream.address falls
//	          in ranges[i], node i becomes the active node on the next clock
//	          edge and receives the remapped address along with an address strobe
//	          delayed by one cycle. Data, strobe, to_controller and ready are
//	          forwarded between upstream and the active node only. Other nodes see
//	          zeroes. upstream.ready is low while upstream.address_strobe is high.
//
// NewRouter fails with an *rtl.OverlapError if a range is empty, does not fit
// the address space or overlaps another range.
//
func NewRouter(name string, dataWidth, addrWidth int, ranges []Range) (*rtl.Module, error) {
	if addrWidth < 1 || addrWidth >= rtl.MaxWidth {
		return nil, errors.Errorf("router %s: invalid address width %d", name, addrWidth)
	}
	if err := checkRanges(addrWidth, ranges); err != nil {
		return nil, errors.Wrapf(err, "router %s", name)
	}

	n := len(ranges)
	b := rtl.NewBuilder(name)
	up := b.Bundle("upstream", Responder(dataWidth, addrWidth))
	nodes := make([]*rtl.Bundle, n)
	for i := range nodes {
		nodes[i] = b.Bundle(node(i), Controller(dataWidth, addrWidth))
	}
	type bounds struct{ start, end *rtl.Signal }
	addrs := make([]bounds, n)
	for i, r := range ranges {
		addrs[i].start = b.Constant("node_start_"+strconv.Itoa(i), rtl.MustBits(addrWidth, r.Start))
		if r.End < 1<<uint(addrWidth) {
			addrs[i].end = b.Constant("node_end_"+strconv.Itoa(i), rtl.MustBits(addrWidth, r.End))
		}
	}
	sw := selWidth(n)
	active := b.DFF("active", sw)
	vaddr := b.DFF("virtual_address", addrWidth)
	strobeDelay := b.DFF("address_strobe_delay", 1)

	upAddr, upAddrStrobe := up.Signal(BusAddress), up.Signal(BusAddressStrobe)
	clock := up.Signal(BusClock)
	b.Comb(func(c *rtl.Body) {
		c.Assign(up.Signal(BusReady), rtl.Zero(1))
		c.Assign(up.Signal(BusToController), rtl.Zero(dataWidth))
		for _, d := range []*rtl.DFF{active, vaddr, strobeDelay} {
			c.Assign(d.Clk, clock)
		}
		c.Assign(active.D, active.Q)
		c.Assign(vaddr.D, vaddr.Q)
		// pipeline the address remap: nodes see the address strobe one cycle late.
		c.Assign(strobeDelay.D, upAddrStrobe)
		for i, nd := range nodes {
			i, sig := i, nd.Signal
			c.Assign(sig(BusFromController), rtl.Zero(dataWidth))
			c.Assign(sig(BusAddress), rtl.Zero(addrWidth))
			c.Assign(sig(BusAddressStrobe), rtl.Zero(1))
			c.Assign(sig(BusStrobe), rtl.Zero(1))
			c.Assign(sig(BusClock), clock)

			hit := rtl.And(rtl.Ge(upAddr, addrs[i].start), upAddrStrobe)
			if addrs[i].end != nil {
				hit = rtl.And(hit, rtl.Lt(upAddr, addrs[i].end))
			}
			c.If(hit, func(c *rtl.Body) {
				c.Assign(active.D, rtl.MustBits(sw, uint64(i)))
				c.Assign(vaddr.D, rtl.Sub(upAddr, addrs[i].start))
			}, nil)
			c.If(rtl.Eq(active.Q, rtl.MustBits(sw, uint64(i))), func(c *rtl.Body) {
				c.Assign(sig(BusFromController), up.Signal(BusFromController))
				c.Assign(sig(BusAddress), vaddr.Q)
				c.Assign(sig(BusStrobe), up.Signal(BusStrobe))
				c.Assign(up.Signal(BusToController), sig(BusToController))
				c.Assign(up.Signal(BusReady), sig(BusReady))
				c.Assign(sig(BusAddressStrobe), strobeDelay.Q)
			}, nil)
		}
		c.If(upAddrStrobe, func(c *rtl.Body) {
			c.Assign(up.Signal(BusReady), rtl.Zero(1))
		}, nil)
	})
	return b.Build()
}

// RouterFromCounts returns a router with contiguous address ranges starting
// at 0, counts[i] addresses being mapped to node i.
//
func RouterFromCounts(name string, dataWidth, addrWidth int, counts []uint64) (*rtl.Module, error) {
	return NewRouter(name, dataWidth, addrWidth, RangesFromCounts(counts))
}
