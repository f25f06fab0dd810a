// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// A PortSpec is a port name and width.
//
type PortSpec struct {
	Name  string
	Width int
}

// ParsePorts parses a port specification string and returns the ports it
// declares. Ports are separated by commas, a width in brackets follows
// multi-bit port names. For example:
//
//	ParsePorts("in[8], sel") // returns []PortSpec{{"in", 8}, {"sel", 1}}
//
func ParsePorts(spec string) ([]PortSpec, error) {
	var (
		out []PortSpec
		sc  scanner.Scanner
	)
	sc.Init(strings.NewReader(spec))
	sc.Mode = scanner.ScanIdents | scanner.ScanInts
	sc.Error = func(*scanner.Scanner, string) {}

	tok := sc.Scan()
	if tok == scanner.EOF {
		return nil, nil
	}
	for {
		if tok != scanner.Ident {
			return nil, parseError(spec, sc.Position.Offset, "expected port name")
		}
		p := PortSpec{Name: sc.TokenText(), Width: 1}
		tok = sc.Scan()
		if tok == '[' {
			if sc.Scan() != scanner.Int {
				return nil, parseError(spec, sc.Position.Offset, "missing bus size")
			}
			w, err := strconv.Atoi(sc.TokenText())
			if err != nil {
				return nil, parseError(spec, sc.Position.Offset, err.Error())
			}
			if err = checkWidth(w); err != nil {
				return nil, parseError(spec, sc.Position.Offset, err.Error())
			}
			p.Width = w
			if sc.Scan() != ']' {
				return nil, parseError(spec, sc.Position.Offset, "missing close bracket")
			}
			tok = sc.Scan()
		}
		out = append(out, p)
		switch tok {
		case scanner.EOF:
			return out, nil
		case ',':
			tok = sc.Scan()
		default:
			return nil, parseError(spec, sc.Position.Offset, "expected comma or end of input")
		}
	}
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
