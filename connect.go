// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConnectAll checks the wiring of m and all of its descendants:
//
//   - every signal that is read (by the module body, a net, a primitive, a
//     child instance input or as an output of m) must have a driver;
//   - no signal may have more than one driver. The body of a module counts as
//     a single driver, each net and each primitive as another one; inputs of m
//     are driven from the outside and outputs of child instances by the
//     children themselves.
//   - modules may only reference their own signals and the ports of their
//     direct children.
//
// Inputs of the top-level module are assumed to be driven by the simulation
// stimulus.
//
// The result is cached: modules are immutable once built.
//
func (m *Module) ConnectAll() error {
	if !m.checked {
		m.checkErr = m.connectAll()
		m.checked = true
	}
	return m.checkErr
}

type signalRead struct {
	s   *Signal
	who string
}

func (m *Module) connectAll() error {
	for _, c := range m.children {
		if err := c.Module.ConnectAll(); err != nil {
			return errors.Wrapf(err, "instance %s of %s", c.Name, m.name)
		}
	}

	var (
		order   []*Signal
		reads   []signalRead
		drivers = make(map[*Signal][]string)
	)
	addDriver := func(s *Signal, who string) {
		if _, ok := drivers[s]; !ok {
			order = append(order, s)
		}
		drivers[s] = append(drivers[s], who)
	}
	name := func(s *Signal) string {
		if n := m.LocalName(s); n != "" {
			return m.name + "." + n
		}
		return s.String()
	}

	for _, p := range m.ports {
		if p.dir == Input {
			addDriver(p, "external")
		}
	}
	for _, p := range m.prims {
		who := "primitive " + p.Name()
		for _, s := range p.Drives() {
			addDriver(s, who)
		}
		for _, s := range p.Reads() {
			reads = append(reads, signalRead{s, who})
		}
	}
	for _, c := range m.children {
		who := "instance " + c.Name
		for _, p := range c.Module.ports {
			switch p.dir {
			case Output:
				addDriver(p, who)
			case Input:
				reads = append(reads, signalRead{p, who})
			case InOut:
				if c.Module.driven[p] {
					addDriver(p, who)
				}
			}
		}
	}

	var scopeErr error
	checkScope := func(s *Signal) bool {
		if m.LocalName(s) != "" {
			return true
		}
		if scopeErr == nil {
			scopeErr = &ScopeError{Module: m.name, Signal: s.String()}
		}
		return false
	}
	body := "body of " + m.name
	assigned := make(map[*Signal]bool)
	walkStmts(m.body,
		func(a *AssignStmt) {
			if checkScope(a.Dst) && !assigned[a.Dst] {
				assigned[a.Dst] = true
				addDriver(a.Dst, body)
			}
		},
		func(e Expr) {
			walkRefs(e, func(s *Signal) {
				if checkScope(s) {
					reads = append(reads, signalRead{s, body})
				}
			})
		})
	if scopeErr != nil {
		return scopeErr
	}
	for _, n := range m.nets {
		addDriver(n.Dest, "net "+n.Name)
		reads = append(reads, signalRead{n.Source, "net " + n.Name})
	}

	m.driven = make(map[*Signal]bool)
	for _, p := range m.ports {
		switch p.dir {
		case Output:
			reads = append(reads, signalRead{p, "output of " + m.name})
			fallthrough
		case InOut:
			if len(drivers[p]) > 0 {
				m.driven[p] = true
			} else if p.dir == InOut {
				addDriver(p, "external")
			}
		}
	}

	for _, s := range order {
		if ds := drivers[s]; len(ds) > 1 {
			return &MultipleDriverError{Signal: name(s), Drivers: ds}
		}
	}
	for _, r := range reads {
		if len(drivers[r.s]) == 0 {
			return &UnconnectedSignalError{Signal: name(r.s), Reader: r.who}
		}
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		read := make(map[*Signal]bool, len(reads))
		for _, r := range reads {
			read[r.s] = true
		}
		for _, s := range m.locals {
			if !read[s] {
				logrus.WithField("module", m.name).Debugf("signal %s is never read", s.name)
			}
		}
	}
	return nil
}
