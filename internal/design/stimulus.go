// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package design

import (
	"sort"

	"github.com/db47h/rtl"
	"github.com/db47h/rtl/hwlib"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Step is one stimulus instruction. Exactly one of its fields must be set.
//
//	- set: {host$address: 3}   inject values into top-level inputs
//	- cycles: 4                run clock cycles
//	- write: {address: 5, data: 0xab}
//	                           perform a complete bus write
//
type Step struct {
	Set    map[string]uint64 `yaml:"set"`
	Cycles int               `yaml:"cycles"`
	Write  *Write            `yaml:"write"`
}

// Write is a bus write transaction.
//
type Write struct {
	Address uint64 `yaml:"address"`
	Data    uint64 `yaml:"data"`
}

func (s *Step) validate() error {
	n := 0
	if len(s.Set) > 0 {
		n++
	}
	if s.Cycles != 0 {
		n++
	}
	if s.Write != nil {
		n++
	}
	if s.Cycles < 0 {
		return errors.Errorf("negative cycle count %d", s.Cycles)
	}
	if n != 1 {
		return errors.New("expected exactly one of set, cycles or write")
	}
	return nil
}

// Runner applies stimulus to a simulated design.
//
type Runner struct {
	Top *Top
	Sim *rtl.Simulation
	Log logrus.FieldLogger
}

func (r *Runner) set(name string, v uint64) error {
	sig := r.Top.Module.Port(name)
	if sig == nil {
		return errors.Errorf("no port %s in %s", name, r.Top.Module.Name())
	}
	return hwlib.SetUint(r.Sim, sig, v)
}

// Write performs a bus write of data at address addr. It takes four clock
// cycles: address phase, address forwarding by the router, data phase and
// strobe release.
//
func (r *Runner) Write(addr, data uint64) error {
	host := r.Top.Host.Name()
	steps := []struct {
		field string
		v     uint64
		cycle bool
	}{
		{hwlib.BusAddress, addr, false},
		{hwlib.BusAddressStrobe, 1, true},
		{hwlib.BusAddressStrobe, 0, true},
		{hwlib.BusFromController, data, false},
		{hwlib.BusStrobe, 1, true},
		{hwlib.BusStrobe, 0, true},
	}
	for _, s := range steps {
		if err := r.set(host+"$"+s.field, s.v); err != nil {
			return err
		}
		if !s.cycle {
			continue
		}
		if err := r.Sim.Cycle(r.Top.Clock()); err != nil {
			return err
		}
	}
	return nil
}

// Run applies steps in order.
//
func (r *Runner) Run(steps []Step) error {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	for i := range steps {
		s := &steps[i]
		log := log.WithField("step", i)
		var err error
		switch {
		case s.Write != nil:
			log.WithFields(logrus.Fields{"address": s.Write.Address, "data": s.Write.Data}).Debug("write")
			err = r.Write(s.Write.Address, s.Write.Data)
		case s.Cycles > 0:
			log.WithField("cycles", s.Cycles).Debug("run")
			err = r.Sim.Cycles(r.Top.Clock(), s.Cycles)
		default:
			for _, name := range sortedKeys(s.Set) {
				log.WithFields(logrus.Fields{"port": name, "value": s.Set[name]}).Debug("set")
				if err = r.set(name, s.Set[name]); err != nil {
					break
				}
			}
		}
		if err != nil {
			return errors.Wrapf(err, "stimulus step %d", i)
		}
	}
	return nil
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
