// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// A Component is a single evaluation of a unit of logic in a running
// Simulation: it reads current signal values and proposes pending ones.
//
type Component func(s *Simulation)

// Logic is the contract implemented by every unit of a design.
//
// Mount is called once when a simulation is created. It must query the socket
// for the pin numbers of the signals the unit uses and return closures around
// these pin numbers. For example, a primitive inverter can be mounted like
// this:
//
//	func (n *inverter) Mount(s *rtl.Socket) []rtl.Component {
//		in, out := s.Pin(n.in), s.Pin(n.out)
//		return []rtl.Component{
//			func(c *rtl.Simulation) { c.Set(out, c.Get(in).Not()) },
//		}
//	}
//
// Components must only read current values (Get, Committed, Rising) and only
// write pending values (Set) of the signals they drive.
//
type Logic interface {
	Name() string
	Mount(s *Socket) []Component
}

// A Primitive is a leaf unit of logic declared inside a module.
//
// Reads and Drives enumerate the signals the primitive uses; ConnectAll relies
// on them to check that every read signal is driven and that no signal has
// more than one driver. All of them must belong to the enclosing module.
//
type Primitive interface {
	Logic
	Reads() []*Signal
	Drives() []*Signal
}
