package starsources

import (
	"github.com/reusee/sublingual/exprs"
	"go.starlark.net/syntax"
)

func (l *lowerer) stmts(list []syntax.Stmt) (ret []exprs.Stmt) {
	for _, stmt := range list {
		ret = append(ret, l.stmt(stmt)...)
	}
	return
}

func branch(body []exprs.Stmt) []exprs.Stmt {
	if len(body) == 0 {
		return nil
	}
	return []exprs.Stmt{
		exprs.Branch{Body: body},
	}
}

func (l *lowerer) stmt(stmt syntax.Stmt) (ret []exprs.Stmt) {
	switch stmt := stmt.(type) {

	case *syntax.AssignStmt:
		line := l.line(stmt.OpPos)
		if ident, ok := stmt.LHS.(*syntax.Ident); ok && stmt.Op == syntax.EQ {
			return []exprs.Stmt{
				exprs.Assign{
					Name:  ident.Name,
					Value: l.expr(stmt.RHS),
					Line:  line,
				},
			}
		}
		return unbind(targets(stmt.LHS), line)

	case *syntax.ExprStmt:
		call, ok := stmt.X.(*syntax.CallExpr)
		if !ok {
			return nil
		}
		dot, ok := call.Fn.(*syntax.DotExpr)
		if !ok || dot.Name.Name != "append" || len(call.Args) != 1 {
			return nil
		}
		ident, ok := dot.X.(*syntax.Ident)
		if !ok {
			return nil
		}
		return []exprs.Stmt{
			exprs.Append{
				Name:  ident.Name,
				Items: []exprs.Expr{l.expr(call.Args[0])},
				Line:  l.line(call.Lparen),
			},
		}

	case *syntax.IfStmt:
		ret = append(ret, branch(l.stmts(stmt.True))...)
		ret = append(ret, branch(l.stmts(stmt.False))...)

	case *syntax.ForStmt:
		body := unbind(targets(stmt.Vars), l.line(stmt.For))
		body = append(body, l.stmts(stmt.Body)...)
		ret = append(ret, branch(body)...)

	case *syntax.WhileStmt:
		ret = append(ret, branch(l.stmts(stmt.Body))...)

	case *syntax.DefStmt:
		// the body is a separate scope
		return unbind([]string{stmt.Name.Name}, l.line(stmt.Def))

	case *syntax.LoadStmt:
		var names []string
		for _, ident := range stmt.To {
			names = append(names, ident.Name)
		}
		return unbind(names, l.line(stmt.Load))

	}
	return
}

func targets(e syntax.Expr) (ret []string) {
	switch e := e.(type) {
	case *syntax.Ident:
		ret = append(ret, e.Name)
	case *syntax.ParenExpr:
		ret = append(ret, targets(e.X)...)
	case *syntax.TupleExpr:
		for _, elem := range e.List {
			ret = append(ret, targets(elem)...)
		}
	case *syntax.ListExpr:
		for _, elem := range e.List {
			ret = append(ret, targets(elem)...)
		}
	}
	return
}

func unbind(names []string, line int) []exprs.Stmt {
	if len(names) == 0 {
		return nil
	}
	return []exprs.Stmt{
		exprs.Unbind{Names: names, Line: line},
	}
}
