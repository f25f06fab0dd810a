// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"github.com/pkg/errors"
)

// A Stmt is a statement of a module body.
//
// Statements are executed in order on every evaluation of the module. An
// assignment proposes the next value of its destination; later assignments to
// the same signal in the same evaluation override earlier ones, which allows
// the usual "default value, then conditional override" style.
//
type Stmt interface {
	stmt()
}

// An AssignStmt proposes Src as the next value of Dst.
type AssignStmt struct {
	Dst *Signal
	Src Expr
}

// An IfStmt executes Then if Cond is non-zero, Else otherwise.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// A Case is a branch of a SwitchStmt.
type Case struct {
	Value Bits
	Body  []Stmt
}

// A SwitchStmt executes the body of the first case whose value equals Sel, or
// Default if none does.
type SwitchStmt struct {
	Sel     Expr
	Cases   []Case
	Default []Stmt
}

func (*AssignStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*SwitchStmt) stmt() {}

// Body collects the statements of a module body.
//
type Body struct {
	stmts []Stmt
	err   error
}

func (b *Body) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error encountered while building b.
func (b *Body) Err() error { return b.err }

// Stmts returns the statements collected so far.
func (b *Body) Stmts() []Stmt { return b.stmts }

// Assign proposes src as the next value of dst.
//
func (b *Body) Assign(dst *Signal, src Expr) {
	if dst == nil {
		b.fail(errors.New("assignment to nil signal"))
		return
	}
	if err := ExprErr(src); err != nil {
		b.fail(errors.Wrapf(err, "assignment to %s", dst.name))
		return
	}
	if dst.width != src.Width() {
		b.fail(errors.Wrapf(&WidthMismatchError{Op: "assign", Left: dst.width, Right: src.Width()}, "assignment to %s", dst.name))
		return
	}
	b.stmts = append(b.stmts, &AssignStmt{dst, src})
}

func (b *Body) sub(fn func(*Body)) []Stmt {
	if fn == nil {
		return nil
	}
	s := &Body{}
	fn(s)
	if s.err != nil {
		b.fail(s.err)
	}
	return s.stmts
}

// If executes then when cond is non-zero and els otherwise. els may be nil.
//
func (b *Body) If(cond Expr, then, els func(*Body)) {
	if err := ExprErr(cond); err != nil {
		b.fail(errors.Wrap(err, "if condition"))
		return
	}
	if cond.Width() != 1 {
		b.fail(&WidthMismatchError{Op: "if condition", Left: cond.Width(), Right: 1})
		return
	}
	b.stmts = append(b.stmts, &IfStmt{cond, b.sub(then), b.sub(els)})
}

// SwitchBody collects the cases of a switch statement.
//
type SwitchBody struct {
	parent *Body
	sw     *SwitchStmt
}

// Case adds a branch taken when the selector equals v.
//
func (s *SwitchBody) Case(v Bits, fn func(*Body)) {
	if v.Width() != s.sw.Sel.Width() {
		s.parent.fail(&WidthMismatchError{Op: "case", Left: s.sw.Sel.Width(), Right: v.Width()})
		return
	}
	for _, c := range s.sw.Cases {
		if c.Value == v {
			s.parent.fail(errors.Errorf("duplicate case %s", v))
			return
		}
	}
	s.sw.Cases = append(s.sw.Cases, Case{v, s.parent.sub(fn)})
}

// Default sets the branch taken when no case matches.
//
func (s *SwitchBody) Default(fn func(*Body)) {
	s.sw.Default = s.parent.sub(fn)
}

// Switch adds a multi-way branch on sel.
//
func (b *Body) Switch(sel Expr, fn func(*SwitchBody)) {
	if err := ExprErr(sel); err != nil {
		b.fail(errors.Wrap(err, "switch selector"))
		return
	}
	sw := &SwitchStmt{Sel: sel}
	fn(&SwitchBody{b, sw})
	b.stmts = append(b.stmts, sw)
}

// walkStmts calls assign for every assignment and read for every expression
// in stmts.
//
func walkStmts(stmts []Stmt, assign func(*AssignStmt), read func(Expr)) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *AssignStmt:
			assign(s)
			read(s.Src)
		case *IfStmt:
			read(s.Cond)
			walkStmts(s.Then, assign, read)
			walkStmts(s.Else, assign, read)
		case *SwitchStmt:
			read(s.Sel)
			for _, c := range s.Cases {
				walkStmts(c.Body, assign, read)
			}
			walkStmts(s.Default, assign, read)
		}
	}
}
