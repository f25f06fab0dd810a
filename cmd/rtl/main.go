// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command rtl builds bus router designs described in a YAML file, simulates
// them to VCD waveforms, generates their Verilog source and validates it with
// yosys.
//
// Usage:
//
//	rtl verilog -c soc.yaml -o soc.v
//	rtl sim -c soc.yaml -o soc.vcd
//	rtl validate -c soc.yaml
//
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
