package bindings

import (
	"slices"

	"github.com/reusee/sublingual/exprs"
)

// Binding is the last expression assigned to a name
type Binding struct {
	Expr    exprs.Expr
	Dynamic bool
}

type Env map[string]Binding

// Build records simple assignments whose line is within [start, end].
// Bindings made under control flow, or made more than once, are dynamic.
func Build(body []exprs.Stmt, start, end int) Env {
	b := &builder{
		env:      make(Env),
		assigned: make(map[string]bool),
		start:    start,
		end:      end,
	}
	b.walk(body, false)
	return b.env
}

// Merge returns outer overlaid by inner
func Merge(outer, inner Env) Env {
	ret := make(Env, len(outer)+len(inner))
	for name, binding := range outer {
		ret[name] = binding
	}
	for name, binding := range inner {
		ret[name] = binding
	}
	return ret
}

type builder struct {
	env      Env
	assigned map[string]bool
	start    int
	end      int
}

func (b *builder) inRange(line int) bool {
	return line >= b.start && line <= b.end
}

func (b *builder) walk(stmts []exprs.Stmt, control bool) {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {

		case exprs.Assign:
			if !b.inRange(stmt.Line) {
				continue
			}
			b.env[stmt.Name] = Binding{
				Expr:    stmt.Value,
				Dynamic: control || b.assigned[stmt.Name],
			}
			b.assigned[stmt.Name] = true

		case exprs.Append:
			if !b.inRange(stmt.Line) {
				continue
			}
			binding, ok := b.env[stmt.Name]
			if !ok {
				continue
			}
			list, ok := binding.Expr.(exprs.List)
			if !ok {
				// mutated in place, value no longer matches its expression
				binding.Dynamic = true
				b.env[stmt.Name] = binding
				continue
			}
			list.Elems = slices.Concat(list.Elems, stmt.Items)
			binding.Expr = list
			b.env[stmt.Name] = binding

		case exprs.Unbind:
			if !b.inRange(stmt.Line) {
				continue
			}
			for _, name := range stmt.Names {
				delete(b.env, name)
				b.assigned[name] = true
			}

		case exprs.Declare:
			if !b.inRange(stmt.Line) {
				continue
			}
			// not an assignment: a later assignment is still the first one
			for _, name := range stmt.Names {
				b.env[name] = Binding{
					Expr:    stmt.Zero,
					Dynamic: control || stmt.Zero == nil,
				}
			}

		case exprs.Branch:
			b.walk(stmt.Body, true)

		}
	}
}
