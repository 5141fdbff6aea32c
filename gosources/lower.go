package gosources

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/templates"
)

const templatesPath = "github.com/reusee/sublingual/templates"

var defaultImports = map[string]string{
	"fmt":       "fmt",
	"templates": templatesPath,
}

type lowerer struct {
	fset       *token.FileSet
	src        []byte
	lineOffset int
	// local package name to import path
	imports map[string]string
}

func (l *lowerer) line(n ast.Node) int {
	return l.fset.Position(n.Pos()).Line + l.lineOffset
}

func (l *lowerer) text(n ast.Node) string {
	start := l.fset.Position(n.Pos()).Offset
	end := l.fset.Position(n.End()).Offset
	if start < 0 || end > len(l.src) || start > end {
		return ""
	}
	return string(l.src[start:end])
}

func (l *lowerer) node(n ast.Node) exprs.Node {
	return exprs.Node{
		Line:   l.line(n),
		Source: l.text(n),
	}
}

func (l *lowerer) packagePath(e ast.Expr) string {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return ""
	}
	imports := l.imports
	if imports == nil {
		imports = defaultImports
	}
	return imports[ident.Name]
}

func (l *lowerer) exprs(list []ast.Expr) []exprs.Expr {
	ret := make([]exprs.Expr, 0, len(list))
	for _, e := range list {
		ret = append(ret, l.expr(e))
	}
	return ret
}

func (l *lowerer) expr(e ast.Expr) exprs.Expr {
	switch e := e.(type) {

	case *ast.ParenExpr:
		return l.expr(e.X)

	case *ast.BasicLit:
		switch e.Kind {
		case token.STRING:
			if s, err := strconv.Unquote(e.Value); err == nil {
				return exprs.Str{
					Node:  l.node(e),
					Value: s,
				}
			}
		case token.CHAR:
			if s, err := strconv.Unquote(e.Value); err == nil {
				return exprs.Const{
					Node: l.node(e),
					Text: s,
				}
			}
		}
		return exprs.Const{
			Node: l.node(e),
			Text: e.Value,
		}

	case *ast.Ident:
		switch e.Name {
		case "true", "false", "nil":
			return exprs.Const{
				Node: l.node(e),
				Text: e.Name,
			}
		}
		return exprs.Name{
			Node:  l.node(e),
			Ident: e.Name,
		}

	case *ast.SelectorExpr:
		if name, ok := dotted(e); ok {
			return exprs.Name{
				Node:  l.node(e),
				Ident: name,
			}
		}

	case *ast.BinaryExpr:
		if e.Op == token.ADD {
			return exprs.Add{
				Node: l.node(e),
				X:    l.expr(e.X),
				Y:    l.expr(e.Y),
			}
		}

	case *ast.UnaryExpr:
		if e.Op == token.AND {
			return l.expr(e.X)
		}

	case *ast.CallExpr:
		return l.call(e)

	case *ast.CompositeLit:
		return l.composite(e)

	}

	return exprs.Unknown{
		Node: l.node(e),
	}
}

func dotted(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name, true
	case *ast.SelectorExpr:
		prefix, ok := dotted(e.X)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Sel.Name, true
	}
	return "", false
}

func (l *lowerer) call(e *ast.CallExpr) exprs.Expr {
	node := l.node(e)
	variadic := e.Ellipsis != token.NoPos

	switch fn := e.Fun.(type) {

	case *ast.Ident:
		// string conversion
		if fn.Name == "string" && len(e.Args) == 1 {
			return l.expr(e.Args[0])
		}

	case *ast.SelectorExpr:
		pkg := l.packagePath(fn.X)
		switch {

		case pkg == "fmt" && fn.Sel.Name == "Sprintf" && len(e.Args) > 0 && !variadic:
			return exprs.Percent{
				Node:   node,
				Format: l.expr(e.Args[0]),
				Args:   l.exprs(e.Args[1:]),
			}

		case pkg == "fmt" && fn.Sel.Name == "Sprint" && !variadic:
			return l.sprint(node, e.Args)

		case pkg == templatesPath && fn.Sel.Name == "Template" && len(e.Args) == 1:
			// conversion
			return l.expr(e.Args[0])

		case pkg == templatesPath && fn.Sel.Name == "Format" && len(e.Args) > 0 && !variadic:
			args, kwargs := l.templateArgs(e.Args[1:])
			return exprs.TemplateCall{
				Node:     node,
				Template: l.expr(e.Args[0]),
				Args:     args,
				Kwargs:   kwargs,
			}

		case pkg == "" && fn.Sel.Name == "Format" && !variadic && l.templateReceiver(fn.X):
			args, kwargs := l.templateArgs(e.Args)
			return exprs.TemplateCall{
				Node:     node,
				Template: l.expr(fn.X),
				Args:     args,
				Kwargs:   kwargs,
			}

		}
	}

	return exprs.Call{
		Node:   node,
		Callee: l.text(e.Fun),
		Args:   l.exprs(e.Args),
	}
}

func (l *lowerer) templateReceiver(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return l.templateReceiver(e.X)
	case *ast.BasicLit:
		return e.Kind == token.STRING
	case *ast.Ident, *ast.SelectorExpr:
		_, ok := dotted(e)
		return ok
	case *ast.CallExpr:
		// templates.Template("...")
		sel, ok := e.Fun.(*ast.SelectorExpr)
		return ok && sel.Sel.Name == "Template" && l.packagePath(sel.X) == templatesPath
	}
	return false
}

// sprint lowers fmt.Sprint into an interpolation: string literal operands are template text
func (l *lowerer) sprint(node exprs.Node, args []ast.Expr) exprs.Expr {
	buf := new(strings.Builder)
	var slots []exprs.Expr
	for _, arg := range args {
		if lit, ok := arg.(*ast.BasicLit); ok && lit.Kind == token.STRING {
			if s, err := strconv.Unquote(lit.Value); err == nil {
				buf.WriteString(templates.Escape(s))
				continue
			}
		}
		buf.WriteString("{}")
		slots = append(slots, l.expr(arg))
	}
	return exprs.Interp{
		Node:     node,
		Template: buf.String(),
		Args:     slots,
	}
}

// templateArgs splits a trailing templates.Named or map literal off as keyword arguments
func (l *lowerer) templateArgs(args []ast.Expr) ([]exprs.Expr, []exprs.Keyword) {
	if len(args) == 0 {
		return nil, nil
	}
	last, ok := unparen(args[len(args)-1]).(*ast.CompositeLit)
	if !ok || !l.isNamed(last.Type) {
		return l.exprs(args), nil
	}
	var kwargs []exprs.Keyword
	for _, elt := range last.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := l.key(kv.Key)
		if !ok {
			continue
		}
		kwargs = append(kwargs, exprs.Keyword{
			Name:  key,
			Value: l.expr(kv.Value),
		})
	}
	return l.exprs(args[:len(args)-1]), kwargs
}

func (l *lowerer) isNamed(typ ast.Expr) bool {
	switch typ := typ.(type) {
	case *ast.MapType:
		return true
	case *ast.SelectorExpr:
		return typ.Sel.Name == "Named" && l.packagePath(typ.X) == templatesPath
	}
	return false
}

func unparen(e ast.Expr) ast.Expr {
	for {
		paren, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = paren.X
	}
}

func (l *lowerer) key(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name, true
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			s, err := strconv.Unquote(e.Value)
			return s, err == nil
		}
	}
	return "", false
}

func (l *lowerer) composite(e *ast.CompositeLit) exprs.Expr {
	node := l.node(e)
	_, isArray := e.Type.(*ast.ArrayType)

	keyed := len(e.Elts) > 0
	for _, elt := range e.Elts {
		if _, ok := elt.(*ast.KeyValueExpr); !ok {
			keyed = false
			break
		}
	}

	if !isArray && (keyed || (len(e.Elts) == 0 && e.Type != nil)) {
		var fields []exprs.Field
		for _, elt := range e.Elts {
			kv := elt.(*ast.KeyValueExpr)
			key, ok := l.key(kv.Key)
			if !ok {
				continue
			}
			fields = append(fields, exprs.Field{
				Key:   key,
				Value: l.expr(kv.Value),
			})
		}
		return exprs.Record{
			Node:   node,
			Fields: fields,
		}
	}

	return exprs.List{
		Node:  node,
		Elems: l.exprs(e.Elts),
	}
}
