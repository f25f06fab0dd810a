// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package design

import (
	"strconv"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/hwlib"
	"github.com/pkg/errors"
)

// Top is a built design.
//
type Top struct {
	Module *rtl.Module
	// Host is the upstream bus of the design.
	Host *rtl.Bundle
}

// Clock returns the bus clock input.
func (t *Top) Clock() *rtl.Signal { return t.Host.Signal(hwlib.BusClock) }

// Build builds the design described by d.
//
func Build(d *Design) (*Top, error) {
	r, err := hwlib.NewRouter(routerName(d), d.DataWidth, d.AddrWidth, d.AddressMap())
	if err != nil {
		return nil, err
	}
	if !d.Ports {
		return &Top{Module: r, Host: r.Bundle("upstream")}, nil
	}

	n := len(d.AddressMap())
	b := rtl.NewBuilder(d.Name)
	host := b.Bundle("host", hwlib.Responder(d.DataWidth, d.AddrWidth))
	outs := make([]*rtl.Signal, n)
	for i := range outs {
		outs[i] = b.Output("out"+strconv.Itoa(i), d.DataWidth)
	}
	b.Instance("router", r)
	b.Link(host, r.Bundle("upstream"))
	ports := make([]*rtl.Module, n)
	for i := range ports {
		p, err := hwlib.OutputPort("output_port", d.DataWidth, d.AddrWidth, d.PortAddress)
		if err != nil {
			return nil, err
		}
		ports[i] = b.Instance("port"+strconv.Itoa(i), p)
		b.Join(r.Bundle("node"+strconv.Itoa(i)), p.Bundle("bus"))
	}
	b.Comb(func(c *rtl.Body) {
		for i, p := range ports {
			c.Assign(p.Port(hwlib.BusReady), rtl.Bit(true))
			c.Assign(outs[i], p.Port("port_out"))
		}
	})
	m, err := b.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "design %s", d.Name)
	}
	return &Top{Module: m, Host: host}, nil
}

func routerName(d *Design) string {
	if d.Ports {
		return "router"
	}
	return d.Name
}
