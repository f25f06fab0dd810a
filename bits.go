// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"math/bits"
	"strconv"

	"github.com/pkg/errors"
)

// MaxWidth is the widest supported bit vector.
//
const MaxWidth = 64

// Bits is a fixed-width unsigned bit vector. The zero value is invalid; use
// NewBits, MustBits, Zero or Bit to create one.
//
// Values are always kept within [0, 2^width).
//
type Bits struct {
	w uint8
	v uint64
}

func mask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(w) - 1
}

func checkWidth(w int) error {
	if w < 1 || w > MaxWidth {
		return &WidthError{Width: w}
	}
	return nil
}

// NewBits returns a vector of the given width holding value v. Values that do
// not fit are rejected, never truncated.
//
func NewBits(width int, v uint64) (Bits, error) {
	if err := checkWidth(width); err != nil {
		return Bits{}, err
	}
	if v&^mask(width) != 0 {
		return Bits{}, errors.Errorf("value %#x does not fit in %d bits", v, width)
	}
	return Bits{uint8(width), v}, nil
}

// MustBits is like NewBits but panics on error.
//
func MustBits(width int, v uint64) Bits {
	b, err := NewBits(width, v)
	if err != nil {
		panic(err)
	}
	return b
}

// Zero returns a zero vector of the given width. It panics if width is invalid.
//
func Zero(width int) Bits { return MustBits(width, 0) }

// Bit returns a single bit vector.
//
func Bit(b bool) Bits {
	if b {
		return Bits{1, 1}
	}
	return Bits{1, 0}
}

// Width returns the width of x.
func (x Bits) Width() int { return int(x.w) }

// Uint64 returns the value of x.
func (x Bits) Uint64() uint64 { return x.v }

// Bool reports whether x is non-zero.
func (x Bits) Bool() bool { return x.v != 0 }

// IsValid reports whether x was properly constructed.
func (x Bits) IsValid() bool { return x.w != 0 }

// String returns x as a Verilog sized literal.
//
func (x Bits) String() string {
	if x.w == 1 {
		return "1'b" + strconv.FormatUint(x.v, 2)
	}
	return strconv.Itoa(int(x.w)) + "'h" + strconv.FormatUint(x.v, 16)
}

// BinaryString returns the value of x as a binary string of exactly Width() digits.
//
func (x Bits) BinaryString() string {
	s := strconv.FormatUint(x.v, 2)
	if n := int(x.w) - len(s); n > 0 {
		pad := make([]byte, n)
		for i := range pad {
			pad[i] = '0'
		}
		s = string(pad) + s
	}
	return s
}

// An Op is a bit vector operator.
//
type Op int

// Binary operators.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	// unary operators
	OpNot
	OpNeg
	OpAndR
	OpOrR
	OpXorR
)

var opNames = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpAnd:  "&",
	OpOr:   "|",
	OpXor:  "^",
	OpShl:  "<<",
	OpShr:  ">>",
	OpEq:   "==",
	OpNe:   "!=",
	OpLt:   "<",
	OpLe:   "<=",
	OpGt:   ">",
	OpGe:   ">=",
	OpNot:  "~",
	OpNeg:  "-",
	OpAndR: "&",
	OpOrR:  "|",
	OpXorR: "^",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// IsCompare reports whether op yields a single bit from two operands.
func (op Op) IsCompare() bool { return op >= OpEq && op <= OpGe }

// IsUnary reports whether op takes a single operand.
func (op Op) IsUnary() bool { return op >= OpNot && op <= OpXorR }

// IsReduce reports whether op is a unary reduction yielding a single bit.
func (op Op) IsReduce() bool { return op >= OpAndR && op <= OpXorR }

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// binop computes x op y for operands of width w. Widths are not checked.
//
func binop(op Op, x, y uint64, w int) uint64 {
	m := mask(w)
	switch op {
	case OpAdd:
		return (x + y) & m
	case OpSub:
		return (x - y) & m
	case OpMul:
		return (x * y) & m
	case OpAnd:
		return x & y
	case OpOr:
		return x | y
	case OpXor:
		return x ^ y
	case OpShl:
		if y >= uint64(w) {
			return 0
		}
		return (x << y) & m
	case OpShr:
		if y >= uint64(w) {
			return 0
		}
		return x >> y
	case OpEq:
		return b2u(x == y)
	case OpNe:
		return b2u(x != y)
	case OpLt:
		return b2u(x < y)
	case OpLe:
		return b2u(x <= y)
	case OpGt:
		return b2u(x > y)
	case OpGe:
		return b2u(x >= y)
	}
	panic("invalid binary operator " + op.String())
}

func unop(op Op, x uint64, w int) uint64 {
	m := mask(w)
	switch op {
	case OpNot:
		return ^x & m
	case OpNeg:
		return -x & m
	case OpAndR:
		return b2u(x == m)
	case OpOrR:
		return b2u(x != 0)
	case OpXorR:
		return uint64(bits.OnesCount64(x) & 1)
	}
	panic("invalid unary operator " + op.String())
}

// Binary returns x op y. Both operands must have the same width. Comparisons
// return a single bit, other operators a vector of the operands' width.
//
func (x Bits) Binary(op Op, y Bits) (Bits, error) {
	if op < OpAdd || op > OpGe {
		return Bits{}, errors.Errorf("%s is not a binary operator", op)
	}
	if x.w != y.w {
		return Bits{}, &WidthMismatchError{Op: op.String(), Left: int(x.w), Right: int(y.w)}
	}
	r := binop(op, x.v, y.v, int(x.w))
	if op.IsCompare() {
		return Bits{1, r}, nil
	}
	return Bits{x.w, r}, nil
}

// Unary returns op x.
//
func (x Bits) Unary(op Op) (Bits, error) {
	if !op.IsUnary() {
		return Bits{}, errors.Errorf("%s is not a unary operator", op)
	}
	r := unop(op, x.v, int(x.w))
	if op.IsReduce() {
		return Bits{1, r}, nil
	}
	return Bits{x.w, r}, nil
}

// Add returns x + y mod 2^w.
func (x Bits) Add(y Bits) (Bits, error) { return x.Binary(OpAdd, y) }

// Sub returns x - y mod 2^w.
func (x Bits) Sub(y Bits) (Bits, error) { return x.Binary(OpSub, y) }

// And returns x & y.
func (x Bits) And(y Bits) (Bits, error) { return x.Binary(OpAnd, y) }

// Or returns x | y.
func (x Bits) Or(y Bits) (Bits, error) { return x.Binary(OpOr, y) }

// Xor returns x ^ y.
func (x Bits) Xor(y Bits) (Bits, error) { return x.Binary(OpXor, y) }

// Shl returns x << y.
func (x Bits) Shl(y Bits) (Bits, error) { return x.Binary(OpShl, y) }

// Shr returns x >> y.
func (x Bits) Shr(y Bits) (Bits, error) { return x.Binary(OpShr, y) }

// Not returns ~x.
func (x Bits) Not() Bits { return Bits{x.w, unop(OpNot, x.v, int(x.w))} }

// Cmp compares x and y and returns -1, 0 or +1.
//
func (x Bits) Cmp(y Bits) (int, error) {
	if x.w != y.w {
		return 0, &WidthMismatchError{Op: "cmp", Left: int(x.w), Right: int(y.w)}
	}
	switch {
	case x.v < y.v:
		return -1, nil
	case x.v > y.v:
		return 1, nil
	}
	return 0, nil
}

// Get returns bit i of x.
//
func (x Bits) Get(i int) (bool, error) {
	if i < 0 || i >= int(x.w) {
		return false, &RangeError{Index: i, Width: int(x.w)}
	}
	return x.v>>uint(i)&1 != 0, nil
}

// Slice returns bits hi down to lo of x, inclusive, as in Verilog x[hi:lo].
//
func (x Bits) Slice(hi, lo int) (Bits, error) {
	if lo < 0 || lo >= int(x.w) {
		return Bits{}, &RangeError{Index: lo, Width: int(x.w)}
	}
	if hi < lo || hi >= int(x.w) {
		return Bits{}, &RangeError{Index: hi, Width: int(x.w)}
	}
	w := hi - lo + 1
	return Bits{uint8(w), x.v >> uint(lo) & mask(w)}, nil
}

// Resize zero-extends or truncates x to the given width.
//
func (x Bits) Resize(width int) (Bits, error) {
	if err := checkWidth(width); err != nil {
		return Bits{}, err
	}
	return Bits{uint8(width), x.v & mask(width)}, nil
}

// Concat returns the concatenation {x, y}, x being the most significant part.
//
func (x Bits) Concat(y Bits) (Bits, error) {
	w := int(x.w) + int(y.w)
	if err := checkWidth(w); err != nil {
		return Bits{}, err
	}
	return Bits{uint8(w), x.v<<y.w | y.v}, nil
}
