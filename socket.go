// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// A Socket maps the signals of a unit to pin numbers in a simulation.
//
type Socket struct {
	sim   *Simulation
	scope []string
}

func newSocket(s *Simulation, top string) *Socket {
	return &Socket{sim: s, scope: []string{top}}
}

// Sub returns a socket for the child instance with the given name.
//
func (s *Socket) Sub(name string) *Socket {
	scope := make([]string, len(s.scope)+1)
	copy(scope, s.scope)
	scope[len(s.scope)] = name
	return &Socket{sim: s.sim, scope: scope}
}

// Scope returns the instance path of the socket, top-level module first.
func (s *Socket) Scope() []string { return s.scope }

// alloc allocates a pin for sig and returns its number.
//
func (s *Socket) alloc(sig *Signal) int {
	c := s.sim
	if n, ok := c.pins[sig]; ok {
		return n
	}
	n := len(c.sigs)
	c.pins[sig] = n
	c.sigs = append(c.sigs, sig)
	c.scopes = append(c.scopes, s.scope)
	return n
}

// Pin returns the pin number allocated to the given signal.
// This function panics if the signal is not part of the simulation.
//
func (s *Socket) Pin(sig *Signal) int {
	n, ok := s.sim.pins[sig]
	if !ok {
		panic("signal " + sig.String() + " is not part of the simulation")
	}
	return n
}

// Init sets the initial value of a signal.
//
func (s *Socket) Init(sig *Signal, v Bits) {
	s.sim.inits = append(s.sim.inits, pinValue{s.Pin(sig), v.v & mask(sig.width)})
}

type pinValue struct {
	pin int
	v   uint64
}
