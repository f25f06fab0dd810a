// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package verilog

// Verilog-2001 reserved words.
var keywords = map[string]bool{
	"always": true, "and": true, "assign": true, "automatic": true, "begin": true,
	"buf": true, "bufif0": true, "bufif1": true, "case": true, "casex": true,
	"casez": true, "cell": true, "cmos": true, "config": true, "deassign": true,
	"default": true, "defparam": true, "design": true, "disable": true, "edge": true,
	"else": true, "end": true, "endcase": true, "endconfig": true, "endfunction": true,
	"endgenerate": true, "endmodule": true, "endprimitive": true, "endspecify": true,
	"endtable": true, "endtask": true, "event": true, "for": true, "force": true,
	"forever": true, "fork": true, "function": true, "generate": true, "genvar": true,
	"highz0": true, "highz1": true, "if": true, "ifnone": true, "incdir": true,
	"include": true, "initial": true, "inout": true, "input": true, "instance": true,
	"integer": true, "join": true, "large": true, "liblist": true, "library": true,
	"localparam": true, "macromodule": true, "medium": true, "module": true, "nand": true,
	"negedge": true, "nmos": true, "nor": true, "noshowcancelled": true, "not": true,
	"notif0": true, "notif1": true, "or": true, "output": true, "parameter": true,
	"pmos": true, "posedge": true, "primitive": true, "pull0": true, "pull1": true,
	"pulldown": true, "pullup": true, "pulsestyle_onevent": true, "pulsestyle_ondetect": true,
	"rcmos": true, "real": true, "realtime": true, "reg": true, "release": true,
	"repeat": true, "rnmos": true, "rpmos": true, "rtran": true, "rtranif0": true,
	"rtranif1": true, "scalared": true, "showcancelled": true, "signed": true, "small": true,
	"specify": true, "specparam": true, "strong0": true, "strong1": true, "supply0": true,
	"supply1": true, "table": true, "task": true, "time": true, "tran": true,
	"tranif0": true, "tranif1": true, "tri": true, "tri0": true, "tri1": true,
	"triand": true, "trior": true, "trireg": true, "unsigned": true, "use": true,
	"uwire": true, "vectored": true, "wait": true, "wand": true, "weak0": true,
	"weak1": true, "while": true, "wire": true, "wor": true, "xnor": true,
	"xor": true,
}
