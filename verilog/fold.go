// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package verilog

import (
	"github.com/db47h/rtl"
)

// A value is the symbolic result of a module body for one signal: nil when
// the signal keeps its previous value, *exprValue or *condValue otherwise.
type value interface{}

type exprValue struct {
	e rtl.Expr
}

type condValue struct {
	cond rtl.Expr
	t, f value
}

type env map[*rtl.Signal]value

func (e env) clone() env {
	r := make(env, len(e))
	for k, v := range e {
		r[k] = v
	}
	return r
}

// fold executes stmts symbolically.
func (e env) fold(stmts []rtl.Stmt) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *rtl.AssignStmt:
			e[st.Dst] = &exprValue{st.Src}
		case *rtl.IfStmt:
			t, f := e.clone(), e.clone()
			t.fold(st.Then)
			f.fold(st.Else)
			e.merge(st.Cond, t, f)
		case *rtl.SwitchStmt:
			e.foldCases(st, 0)
		}
	}
}

// foldCases folds a switch as a chain of if/else statements.
func (e env) foldCases(st *rtl.SwitchStmt, i int) {
	if i == len(st.Cases) {
		e.fold(st.Default)
		return
	}
	t, f := e.clone(), e.clone()
	t.fold(st.Cases[i].Body)
	f.foldCases(st, i+1)
	e.merge(rtl.Eq(st.Sel, st.Cases[i].Value), t, f)
}

func (e env) merge(cond rtl.Expr, t, f env) {
	for s, tv := range t {
		if fv := f[s]; tv != fv {
			e[s] = &condValue{cond, tv, fv}
		}
	}
	for s, fv := range f {
		if _, ok := t[s]; !ok {
			e[s] = &condValue{cond, nil, fv}
		}
	}
}

// assigned returns the signals assigned in stmts, in order of first
// assignment.
func assigned(stmts []rtl.Stmt) []*rtl.Signal {
	var (
		r    []*rtl.Signal
		seen = make(map[*rtl.Signal]bool)
		walk func([]rtl.Stmt)
	)
	walk = func(stmts []rtl.Stmt) {
		for _, st := range stmts {
			switch st := st.(type) {
			case *rtl.AssignStmt:
				if !seen[st.Dst] {
					seen[st.Dst] = true
					r = append(r, st.Dst)
				}
			case *rtl.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case *rtl.SwitchStmt:
				for _, c := range st.Cases {
					walk(c.Body)
				}
				walk(st.Default)
			}
		}
	}
	walk(stmts)
	return r
}
