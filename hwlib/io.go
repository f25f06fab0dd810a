// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/rtl"
)

// Uint returns the committed value of sig as an uint64.
//
func Uint(s *rtl.Simulation, sig *rtl.Signal) uint64 {
	return s.Read(sig).Uint64()
}

// SetUint injects v into the top-level input sig. v is truncated to the
// signal width.
//
func SetUint(s *rtl.Simulation, sig *rtl.Signal, v uint64) error {
	if w := sig.Width(); w < 64 {
		v &= 1<<uint(w) - 1
	}
	return s.Inject(sig, rtl.MustBits(sig.Width(), v))
}

// SetBool injects a single bit value into the top-level input sig.
//
func SetBool(s *rtl.Simulation, sig *rtl.Signal, v bool) error {
	return s.Inject(sig, rtl.Bit(v))
}
