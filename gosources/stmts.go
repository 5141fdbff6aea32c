package gosources

import (
	"go/ast"
	"go/token"

	"github.com/reusee/sublingual/exprs"
)

func (l *lowerer) stmts(list []ast.Stmt) (ret []exprs.Stmt) {
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

func (l *lowerer) stmt(stmt ast.Stmt) (ret []exprs.Stmt) {
	switch stmt := stmt.(type) {

	case *ast.AssignStmt:
		return l.assign(stmt)

	case *ast.DeclStmt:
		return l.decl(stmt.Decl)

	case *ast.BlockStmt:
		return l.stmts(stmt.List)

	case *ast.LabeledStmt:
		return l.stmt(stmt.Stmt)

	case *ast.IfStmt:
		ret = append(ret, l.optional(stmt.Init)...)
		ret = append(ret, l.closures(stmt.Cond)...)
		ret = append(ret, branch(l.stmts(stmt.Body.List))...)
		if stmt.Else != nil {
			ret = append(ret, branch(l.stmt(stmt.Else))...)
		}

	case *ast.ForStmt:
		ret = append(ret, l.optional(stmt.Init)...)
		body := l.stmts(stmt.Body.List)
		body = append(body, l.optional(stmt.Post)...)
		ret = append(ret, branch(body)...)

	case *ast.RangeStmt:
		ret = append(ret, l.closures(stmt.X)...)
		var names []string
		for _, e := range []ast.Expr{stmt.Key, stmt.Value} {
			if ident, ok := e.(*ast.Ident); ok && ident.Name != "_" {
				names = append(names, ident.Name)
			}
		}
		body := l.stmts(stmt.Body.List)
		if len(names) > 0 {
			body = append([]exprs.Stmt{
				exprs.Unbind{Names: names, Line: l.line(stmt)},
			}, body...)
		}
		ret = append(ret, branch(body)...)

	case *ast.SwitchStmt:
		ret = append(ret, l.optional(stmt.Init)...)
		for _, clause := range stmt.Body.List {
			ret = append(ret, branch(l.stmts(clause.(*ast.CaseClause).Body))...)
		}

	case *ast.TypeSwitchStmt:
		ret = append(ret, l.optional(stmt.Init)...)
		if assign, ok := stmt.Assign.(*ast.AssignStmt); ok {
			ret = append(ret, l.unbind(assign.Lhs, l.line(assign))...)
		}
		for _, clause := range stmt.Body.List {
			ret = append(ret, branch(l.stmts(clause.(*ast.CaseClause).Body))...)
		}

	case *ast.SelectStmt:
		for _, clause := range stmt.Body.List {
			comm := clause.(*ast.CommClause)
			var body []exprs.Stmt
			if assign, ok := comm.Comm.(*ast.AssignStmt); ok {
				body = append(body, l.unbind(assign.Lhs, l.line(assign))...)
			}
			body = append(body, l.stmts(comm.Body)...)
			ret = append(ret, branch(body)...)
		}

	case *ast.GoStmt:
		ret = append(ret, l.closures(stmt.Call)...)

	case *ast.DeferStmt:
		ret = append(ret, l.closures(stmt.Call)...)

	case *ast.ExprStmt:
		ret = append(ret, l.closures(stmt.X)...)

	case *ast.ReturnStmt:
		for _, e := range stmt.Results {
			ret = append(ret, l.closures(e)...)
		}

	case *ast.IncDecStmt:
		ret = append(ret, l.unbind([]ast.Expr{stmt.X}, l.line(stmt))...)

	}
	return
}

func (l *lowerer) optional(stmt ast.Stmt) []exprs.Stmt {
	if stmt == nil {
		return nil
	}
	return l.stmt(stmt)
}

// closures lowers function literal bodies in n, which may run at any time
func (l *lowerer) closures(nodes ...ast.Node) (ret []exprs.Stmt) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		ast.Inspect(n, func(n ast.Node) bool {
			lit, ok := n.(*ast.FuncLit)
			if !ok {
				return true
			}
			ret = append(ret, branch(l.stmts(lit.Body.List))...)
			return false
		})
	}
	return
}

func (l *lowerer) unbind(lhs []ast.Expr, line int) []exprs.Stmt {
	var names []string
	for _, e := range lhs {
		if ident, ok := e.(*ast.Ident); ok && ident.Name != "_" {
			names = append(names, ident.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []exprs.Stmt{
		exprs.Unbind{Names: names, Line: line},
	}
}

func (l *lowerer) assign(stmt *ast.AssignStmt) []exprs.Stmt {
	line := l.line(stmt)
	var ret []exprs.Stmt
	for _, e := range stmt.Rhs {
		ret = append(ret, l.closures(e)...)
	}

	if len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return append(ret, l.unbind(stmt.Lhs, line)...)
	}
	ident, ok := stmt.Lhs[0].(*ast.Ident)
	if !ok || ident.Name == "_" {
		// field, index or blank target
		return ret
	}

	switch stmt.Tok {
	case token.DEFINE, token.ASSIGN:
		if items, ok := l.appendItems(ident.Name, stmt.Rhs[0]); ok {
			return append(ret, exprs.Append{
				Name:  ident.Name,
				Items: items,
				Line:  line,
			})
		}
		return append(ret, exprs.Assign{
			Name:  ident.Name,
			Value: l.expr(stmt.Rhs[0]),
			Line:  line,
		})
	}

	// op=
	return append(ret, l.unbind(stmt.Lhs, line)...)
}

// appendItems matches name = append(name, items...)
func (l *lowerer) appendItems(name string, rhs ast.Expr) ([]exprs.Expr, bool) {
	call, ok := rhs.(*ast.CallExpr)
	if !ok || call.Ellipsis != token.NoPos || len(call.Args) < 1 {
		return nil, false
	}
	fn, ok := call.Fun.(*ast.Ident)
	if !ok || fn.Name != "append" {
		return nil, false
	}
	target, ok := call.Args[0].(*ast.Ident)
	if !ok || target.Name != name {
		return nil, false
	}
	return l.exprs(call.Args[1:]), true
}

func (l *lowerer) decl(decl ast.Decl) (ret []exprs.Stmt) {
	gen, ok := decl.(*ast.GenDecl)
	if !ok {
		return nil
	}
	if gen.Tok != token.VAR && gen.Tok != token.CONST {
		return nil
	}
	for _, spec := range gen.Specs {
		spec := spec.(*ast.ValueSpec)
		line := l.line(spec)
		for _, e := range spec.Values {
			ret = append(ret, l.closures(e)...)
		}
		if len(spec.Values) == 0 && gen.Tok == token.VAR {
			var names []string
			for _, name := range spec.Names {
				if name.Name != "_" {
					names = append(names, name.Name)
				}
			}
			ret = append(ret, exprs.Declare{
				Names: names,
				Zero:  l.zero(spec.Type),
				Line:  line,
			})
			continue
		}
		if len(spec.Names) == 1 && len(spec.Values) == 1 && spec.Names[0].Name != "_" {
			ret = append(ret, exprs.Assign{
				Name:  spec.Names[0].Name,
				Value: l.expr(spec.Values[0]),
				Line:  line,
			})
			continue
		}
		var lhs []ast.Expr
		for _, name := range spec.Names {
			lhs = append(lhs, name)
		}
		ret = append(ret, l.unbind(lhs, line)...)
	}
	return
}

// zero returns the zero value expression of string and slice types
func (l *lowerer) zero(typ ast.Expr) exprs.Expr {
	switch typ := typ.(type) {
	case *ast.Ident:
		if typ.Name == "string" {
			return exprs.Str{
				Node: exprs.Node{Line: l.line(typ), Source: `""`},
			}
		}
	case *ast.ArrayType:
		if typ.Len == nil {
			return exprs.List{Node: l.node(typ)}
		}
	}
	return nil
}
