package resolvers

import (
	"github.com/reusee/sublingual/bindings"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/grammars"
	"github.com/reusee/sublingual/templates"
)

// Locals is a read-only snapshot of runtime values by name or expression text
type Locals map[string]any

const Unresolved = "<unresolved>"

// Resolve converts an expression into the grammar of the string it builds.
// It never evaluates program logic and never fails.
func Resolve(expr exprs.Expr, env bindings.Env, locals Locals) grammars.Grammar {
	return resolve(expr, env, nil, locals)
}

type visited struct {
	name string
	next *visited
}

func (v *visited) has(name string) bool {
	for ; v != nil; v = v.next {
		if v.name == name {
			return true
		}
	}
	return false
}

func resolve(expr exprs.Expr, env bindings.Env, seen *visited, locals Locals) (ret grammars.Grammar) {
	defer func() {
		if p := recover(); p != nil {
			ret = grammars.Var{Name: Unresolved}
		}
	}()

	switch expr := expr.(type) {

	case exprs.Name:
		name := expr.Ident
		if seen.has(name) {
			return grammars.Var{Name: name}
		}
		binding, ok := env[name]
		if ok && !binding.Dynamic && !exprs.ContainsOtherCall(binding.Expr) {
			return resolve(binding.Expr, env, &visited{name: name, next: seen}, locals)
		}
		return observed(name, locals)

	case exprs.Str:
		return grammars.Literal{Value: expr.Value}

	case exprs.Const:
		return grammars.Literal{Value: expr.Text}

	case exprs.Add:
		return grammars.NewConcat(
			resolve(expr.X, env, seen, locals),
			resolve(expr.Y, env, seen, locals),
		)

	case exprs.Interp:
		return grammars.NewFormat(
			grammars.Literal{Value: expr.Template},
			resolveAll(expr.Args, env, seen, locals),
			nil,
		)

	case exprs.Percent:
		base := resolve(expr.Format, env, seen, locals)
		if lit, ok := base.(grammars.Literal); ok {
			base = grammars.Literal{Value: templates.FromPercent(lit.Value)}
		}
		return grammars.NewFormat(
			base,
			resolveAll(expr.Args, env, seen, locals),
			resolveKeywords(expr.Kwargs, env, seen, locals),
		)

	case exprs.TemplateCall:
		return grammars.NewFormat(
			resolve(expr.Template, env, seen, locals),
			resolveAll(expr.Args, env, seen, locals),
			resolveKeywords(expr.Kwargs, env, seen, locals),
		)

	case exprs.Call:
		return observed(expr.Source, locals)

	case nil:
		return grammars.Var{Name: Unresolved}

	}

	return grammars.Var{Name: exprs.Text(expr)}
}

func observed(name string, locals Locals) grammars.Grammar {
	if v, ok := locals[name]; ok && v != nil {
		return grammars.InferredVar{Name: name, Value: v}
	}
	return grammars.Var{Name: name}
}

func resolveAll(list []exprs.Expr, env bindings.Env, seen *visited, locals Locals) []grammars.Grammar {
	ret := make([]grammars.Grammar, 0, len(list))
	for _, expr := range list {
		ret = append(ret, resolve(expr, env, seen, locals))
	}
	return ret
}

func resolveKeywords(kws []exprs.Keyword, env bindings.Env, seen *visited, locals Locals) map[string]grammars.Grammar {
	if len(kws) == 0 {
		return nil
	}
	ret := make(map[string]grammars.Grammar, len(kws))
	for _, kw := range kws {
		ret[kw.Name] = resolve(kw.Value, env, seen, locals)
	}
	return ret
}
