// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"github.com/pkg/errors"
)

// Values gives access to signal values during evaluation.
//
type Values interface {
	Value(s *Signal) Bits
}

// An Expr is a node of a combinational expression tree.
//
// Expression trees are the single representation of logic consumed by both
// the simulator and the code generators. The built-in node types are Bits
// (constants), *Signal (signal reads), *UnaryExpr, *BinaryExpr, *MuxExpr,
// *SliceExpr, *ConcatExpr and *ResizeExpr.
//
// Custom expression types can be simulated through their Eval method, but code
// generators reject them. A custom Expr that reads signals should also
// implement Refs so that ConnectAll can see them.
//
type Expr interface {
	Width() int
	Eval(v Values) Bits
}

// Eval implements Expr for constants.
func (x Bits) Eval(Values) Bits { return x }

// A UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op Op
	X  Expr
}

// Width implements Expr.
func (e *UnaryExpr) Width() int {
	if e.Op.IsReduce() {
		return 1
	}
	return e.X.Width()
}

// Eval implements Expr.
func (e *UnaryExpr) Eval(v Values) Bits {
	x := e.X.Eval(v)
	return Bits{uint8(e.Width()), unop(e.Op, x.v, int(x.w))}
}

// A BinaryExpr applies a binary operator to operands of equal width.
type BinaryExpr struct {
	Op   Op
	X, Y Expr
}

// Width implements Expr.
func (e *BinaryExpr) Width() int {
	if e.Op.IsCompare() {
		return 1
	}
	return e.X.Width()
}

// Eval implements Expr.
func (e *BinaryExpr) Eval(v Values) Bits {
	x, y := e.X.Eval(v), e.Y.Eval(v)
	return Bits{uint8(e.Width()), binop(e.Op, x.v, y.v, int(x.w))}
}

// A MuxExpr selects A when Sel is 0, B otherwise.
type MuxExpr struct {
	Sel  Expr
	A, B Expr
}

// Width implements Expr.
func (e *MuxExpr) Width() int { return e.A.Width() }

// Eval implements Expr.
func (e *MuxExpr) Eval(v Values) Bits {
	if e.Sel.Eval(v).v != 0 {
		return e.B.Eval(v)
	}
	return e.A.Eval(v)
}

// A SliceExpr extracts bits Hi down to Lo of X.
type SliceExpr struct {
	X      Expr
	Hi, Lo int
}

// Width implements Expr.
func (e *SliceExpr) Width() int { return e.Hi - e.Lo + 1 }

// Eval implements Expr.
func (e *SliceExpr) Eval(v Values) Bits {
	x := e.X.Eval(v)
	return Bits{uint8(e.Width()), x.v >> uint(e.Lo) & mask(e.Width())}
}

// A ConcatExpr concatenates its parts, the first one being the most
// significant.
type ConcatExpr struct {
	Parts []Expr
}

// Width implements Expr.
func (e *ConcatExpr) Width() int {
	w := 0
	for _, p := range e.Parts {
		w += p.Width()
	}
	return w
}

// Eval implements Expr.
func (e *ConcatExpr) Eval(v Values) Bits {
	var r uint64
	for _, p := range e.Parts {
		x := p.Eval(v)
		r = r<<x.w | x.v
	}
	return Bits{uint8(e.Width()), r}
}

// A ResizeExpr zero-extends or truncates X to W bits.
type ResizeExpr struct {
	X Expr
	W int
}

// Width implements Expr.
func (e *ResizeExpr) Width() int { return e.W }

// Eval implements Expr.
func (e *ResizeExpr) Eval(v Values) Bits {
	return Bits{uint8(e.W), e.X.Eval(v).v & mask(e.W)}
}

// badExpr carries a construction error up the tree so that the enclosing
// Builder can report it.
type badExpr struct {
	err error
}

func (e *badExpr) Width() int        { return 0 }
func (e *badExpr) Eval(Values) Bits { panic(e.err) }

// ExprErr returns the first construction error found in e, if any.
//
func ExprErr(e Expr) error {
	switch x := e.(type) {
	case nil:
		return errors.New("nil expression")
	case *Signal:
		if x == nil {
			return errors.New("nil signal")
		}
	case *badExpr:
		return x.err
	}
	return nil
}

func firstBad(es ...Expr) Expr {
	for _, e := range es {
		if err := ExprErr(e); err != nil {
			if b, ok := e.(*badExpr); ok {
				return b
			}
			return &badExpr{err}
		}
	}
	return nil
}

// Lit returns a constant of the given width. An invalid width or a value that
// does not fit is reported when the expression is used.
//
func Lit(width int, v uint64) Expr {
	b, err := NewBits(width, v)
	if err != nil {
		return &badExpr{err}
	}
	return b
}

// Binary returns x op y. Operand widths must match.
//
func Binary(op Op, x, y Expr) Expr {
	if b := firstBad(x, y); b != nil {
		return b
	}
	if op < OpAdd || op > OpGe {
		return &badExpr{errors.Errorf("%s is not a binary operator", op)}
	}
	if x.Width() != y.Width() {
		return &badExpr{&WidthMismatchError{Op: op.String(), Left: x.Width(), Right: y.Width()}}
	}
	return &BinaryExpr{op, x, y}
}

// Unary returns op x.
//
func Unary(op Op, x Expr) Expr {
	if b := firstBad(x); b != nil {
		return b
	}
	if !op.IsUnary() {
		return &badExpr{errors.Errorf("%s is not a unary operator", op)}
	}
	return &UnaryExpr{op, x}
}

// Add returns x + y.
func Add(x, y Expr) Expr { return Binary(OpAdd, x, y) }

// Sub returns x - y.
func Sub(x, y Expr) Expr { return Binary(OpSub, x, y) }

// Mul returns x * y, truncated to the operand width.
func Mul(x, y Expr) Expr { return Binary(OpMul, x, y) }

// And returns x & y.
func And(x, y Expr) Expr { return Binary(OpAnd, x, y) }

// Or returns x | y.
func Or(x, y Expr) Expr { return Binary(OpOr, x, y) }

// Xor returns x ^ y.
func Xor(x, y Expr) Expr { return Binary(OpXor, x, y) }

// Shl returns x << y.
func Shl(x, y Expr) Expr { return Binary(OpShl, x, y) }

// Shr returns x >> y.
func Shr(x, y Expr) Expr { return Binary(OpShr, x, y) }

// Eq returns x == y.
func Eq(x, y Expr) Expr { return Binary(OpEq, x, y) }

// Ne returns x != y.
func Ne(x, y Expr) Expr { return Binary(OpNe, x, y) }

// Lt returns x < y.
func Lt(x, y Expr) Expr { return Binary(OpLt, x, y) }

// Le returns x <= y.
func Le(x, y Expr) Expr { return Binary(OpLe, x, y) }

// Gt returns x > y.
func Gt(x, y Expr) Expr { return Binary(OpGt, x, y) }

// Ge returns x >= y.
func Ge(x, y Expr) Expr { return Binary(OpGe, x, y) }

// Not returns ~x.
func Not(x Expr) Expr { return Unary(OpNot, x) }

// Neg returns -x mod 2^w.
func Neg(x Expr) Expr { return Unary(OpNeg, x) }

// ReduceAnd returns &x.
func ReduceAnd(x Expr) Expr { return Unary(OpAndR, x) }

// ReduceOr returns |x.
func ReduceOr(x Expr) Expr { return Unary(OpOrR, x) }

// ReduceXor returns ^x.
func ReduceXor(x Expr) Expr { return Unary(OpXorR, x) }

// Mux returns a when sel is 0, b otherwise. sel must be a single bit and a, b
// must have the same width.
//
func Mux(sel, a, b Expr) Expr {
	if bad := firstBad(sel, a, b); bad != nil {
		return bad
	}
	if sel.Width() != 1 {
		return &badExpr{&WidthMismatchError{Op: "mux select", Left: sel.Width(), Right: 1}}
	}
	if a.Width() != b.Width() {
		return &badExpr{&WidthMismatchError{Op: "mux", Left: a.Width(), Right: b.Width()}}
	}
	return &MuxExpr{sel, a, b}
}

// Slice returns bits hi down to lo of x.
//
func Slice(x Expr, hi, lo int) Expr {
	if b := firstBad(x); b != nil {
		return b
	}
	w := x.Width()
	if lo < 0 || lo >= w {
		return &badExpr{&RangeError{Index: lo, Width: w}}
	}
	if hi < lo || hi >= w {
		return &badExpr{&RangeError{Index: hi, Width: w}}
	}
	return &SliceExpr{x, hi, lo}
}

// Index returns bit i of x.
func Index(x Expr, i int) Expr { return Slice(x, i, i) }

// Concat returns the concatenation of parts, most significant first.
//
func Concat(parts ...Expr) Expr {
	if b := firstBad(parts...); b != nil {
		return b
	}
	if len(parts) == 0 {
		return &badExpr{errors.New("empty concatenation")}
	}
	w := 0
	for _, p := range parts {
		w += p.Width()
	}
	if err := checkWidth(w); err != nil {
		return &badExpr{err}
	}
	return &ConcatExpr{append([]Expr(nil), parts...)}
}

// Resize zero-extends or truncates x to width w.
//
func Resize(x Expr, w int) Expr {
	if b := firstBad(x); b != nil {
		return b
	}
	if err := checkWidth(w); err != nil {
		return &badExpr{err}
	}
	if x.Width() == w {
		return x
	}
	return &ResizeExpr{x, w}
}

// Refs returns the signals read by e, in tree order. Custom expressions
// contribute the signals returned by their own Refs method.
//
func Refs(e Expr) []*Signal {
	var r []*Signal
	walkRefs(e, func(s *Signal) { r = append(r, s) })
	return r
}

func walkRefs(e Expr, fn func(*Signal)) {
	switch e := e.(type) {
	case *Signal:
		fn(e)
	case Bits:
	case *UnaryExpr:
		walkRefs(e.X, fn)
	case *BinaryExpr:
		walkRefs(e.X, fn)
		walkRefs(e.Y, fn)
	case *MuxExpr:
		walkRefs(e.Sel, fn)
		walkRefs(e.A, fn)
		walkRefs(e.B, fn)
	case *SliceExpr:
		walkRefs(e.X, fn)
	case *ConcatExpr:
		for _, p := range e.Parts {
			walkRefs(p, fn)
		}
	case *ResizeExpr:
		walkRefs(e.X, fn)
	case interface{ Refs() []*Signal }:
		for _, s := range e.Refs() {
			fn(s)
		}
	}
}
