// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

// settled gives custom expressions access to current values.
type settled struct {
	s *Simulation
}

func (v settled) Value(sig *Signal) Bits {
	return Bits{uint8(sig.width), v.s.cur[v.s.pins[sig]]}
}

type evalFn func(c *Simulation) uint64

// compileExpr turns an expression tree into a closure over pin numbers.
//
func compileExpr(e Expr, s *Socket) evalFn {
	switch e := e.(type) {
	case *Signal:
		n := s.Pin(e)
		return func(c *Simulation) uint64 { return c.cur[n] }
	case Bits:
		v := e.v
		return func(*Simulation) uint64 { return v }
	case *UnaryExpr:
		x, op, w := compileExpr(e.X, s), e.Op, e.X.Width()
		return func(c *Simulation) uint64 { return unop(op, x(c), w) }
	case *BinaryExpr:
		x, y, op, w := compileExpr(e.X, s), compileExpr(e.Y, s), e.Op, e.X.Width()
		return func(c *Simulation) uint64 { return binop(op, x(c), y(c), w) }
	case *MuxExpr:
		sel, a, b := compileExpr(e.Sel, s), compileExpr(e.A, s), compileExpr(e.B, s)
		return func(c *Simulation) uint64 {
			if sel(c) != 0 {
				return b(c)
			}
			return a(c)
		}
	case *SliceExpr:
		x, lo, m := compileExpr(e.X, s), uint(e.Lo), mask(e.Width())
		return func(c *Simulation) uint64 { return x(c) >> lo & m }
	case *ConcatExpr:
		parts := make([]evalFn, len(e.Parts))
		widths := make([]uint, len(e.Parts))
		for i, p := range e.Parts {
			parts[i], widths[i] = compileExpr(p, s), uint(p.Width())
		}
		return func(c *Simulation) uint64 {
			var r uint64
			for i, p := range parts {
				r = r<<widths[i] | p(c)
			}
			return r
		}
	case *ResizeExpr:
		x, m := compileExpr(e.X, s), mask(e.W)
		return func(c *Simulation) uint64 { return x(c) & m }
	}
	m := mask(e.Width())
	return func(c *Simulation) uint64 { return e.Eval(settled{c}).v & m }
}

func compileStmts(stmts []Stmt, s *Socket) func(*Simulation) {
	fs := make([]func(*Simulation), len(stmts))
	for i, st := range stmts {
		fs[i] = compileStmt(st, s)
	}
	return func(c *Simulation) {
		for _, f := range fs {
			f(c)
		}
	}
}

func compileStmt(st Stmt, s *Socket) func(*Simulation) {
	switch st := st.(type) {
	case *AssignStmt:
		dst, src := s.Pin(st.Dst), compileExpr(st.Src, s)
		return func(c *Simulation) { c.next[dst] = src(c) }
	case *IfStmt:
		cond, then, els := compileExpr(st.Cond, s), compileStmts(st.Then, s), compileStmts(st.Else, s)
		return func(c *Simulation) {
			if cond(c) != 0 {
				then(c)
			} else {
				els(c)
			}
		}
	case *SwitchStmt:
		sel := compileExpr(st.Sel, s)
		vals := make([]uint64, len(st.Cases))
		bodies := make([]func(*Simulation), len(st.Cases))
		for i, cs := range st.Cases {
			vals[i], bodies[i] = cs.Value.v, compileStmts(cs.Body, s)
		}
		def := compileStmts(st.Default, s)
		return func(c *Simulation) {
			v := sel(c)
			for i, cv := range vals {
				if v == cv {
					bodies[i](c)
					return
				}
			}
			def(c)
		}
	}
	panic("unknown statement type")
}

// compileBody returns the component evaluating a module body and its nets.
//
func compileBody(body []Stmt, nets []Net, s *Socket) Component {
	run := compileStmts(body, s)
	src := make([]int, len(nets))
	dst := make([]int, len(nets))
	for i, n := range nets {
		src[i], dst[i] = s.Pin(n.Source), s.Pin(n.Dest)
	}
	return func(c *Simulation) {
		run(c)
		for i, d := range dst {
			c.next[d] = c.cur[src[i]]
		}
	}
}
