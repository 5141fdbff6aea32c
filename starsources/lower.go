package starsources

import (
	"strings"

	"github.com/reusee/sublingual/exprs"
	"go.starlark.net/syntax"
)

type lowerer struct {
	lines      [][]rune
	lineOffset int
}

func newLowerer(src string, lineOffset int) *lowerer {
	l := &lowerer{
		lineOffset: lineOffset,
	}
	for _, line := range strings.Split(src, "\n") {
		l.lines = append(l.lines, []rune(line))
	}
	return l
}

func (l *lowerer) line(pos syntax.Position) int {
	return int(pos.Line) + l.lineOffset
}

// text slices the source of n. Columns are rune offsets.
func (l *lowerer) text(n syntax.Node) string {
	start, end := n.Span()
	startLine, startCol := int(start.Line)-1, int(start.Col)-1
	endLine, endCol := int(end.Line)-1, int(end.Col)-1
	if startLine < 0 || endLine >= len(l.lines) || startLine > endLine {
		return ""
	}
	buf := new(strings.Builder)
	for i := startLine; i <= endLine; i++ {
		line := l.lines[i]
		from, to := 0, len(line)
		if i == startLine {
			from = min(max(startCol, 0), len(line))
		}
		if i == endLine {
			to = min(max(endCol, 0), len(line))
		}
		if from < to {
			buf.WriteString(string(line[from:to]))
		}
		if i != endLine {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func (l *lowerer) node(n syntax.Node) exprs.Node {
	start, _ := n.Span()
	return exprs.Node{
		Line:   l.line(start),
		Source: l.text(n),
	}
}

func (l *lowerer) exprs(list []syntax.Expr) []exprs.Expr {
	ret := make([]exprs.Expr, 0, len(list))
	for _, e := range list {
		ret = append(ret, l.expr(e))
	}
	return ret
}

func (l *lowerer) expr(e syntax.Expr) exprs.Expr {
	switch e := e.(type) {

	case *syntax.ParenExpr:
		return l.expr(e.X)

	case *syntax.Literal:
		if s, ok := e.Value.(string); ok && e.Token == syntax.STRING {
			return exprs.Str{
				Node:  l.node(e),
				Value: s,
			}
		}
		return exprs.Const{
			Node: l.node(e),
			Text: e.Raw,
		}

	case *syntax.Ident:
		switch e.Name {
		case "True", "False", "None":
			return exprs.Const{
				Node: l.node(e),
				Text: e.Name,
			}
		}
		return exprs.Name{
			Node:  l.node(e),
			Ident: e.Name,
		}

	case *syntax.DotExpr:
		if name, ok := dotted(e); ok {
			return exprs.Name{
				Node:  l.node(e),
				Ident: name,
			}
		}

	case *syntax.BinaryExpr:
		switch e.Op {
		case syntax.PLUS:
			return exprs.Add{
				Node: l.node(e),
				X:    l.expr(e.X),
				Y:    l.expr(e.Y),
			}
		case syntax.PERCENT:
			return l.percent(e)
		}

	case *syntax.CallExpr:
		return l.call(e)

	case *syntax.ListExpr:
		return exprs.List{
			Node:  l.node(e),
			Elems: l.exprs(e.List),
		}

	case *syntax.TupleExpr:
		return exprs.List{
			Node:  l.node(e),
			Elems: l.exprs(e.List),
		}

	case *syntax.DictExpr:
		return exprs.Record{
			Node:   l.node(e),
			Fields: l.fields(e),
		}

	}

	return exprs.Unknown{
		Node: l.node(e),
	}
}

func dotted(e syntax.Expr) (string, bool) {
	switch e := e.(type) {
	case *syntax.Ident:
		return e.Name, true
	case *syntax.DotExpr:
		prefix, ok := dotted(e.X)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Name.Name, true
	}
	return "", false
}

func (l *lowerer) fields(dict *syntax.DictExpr) (ret []exprs.Field) {
	for _, e := range dict.List {
		entry, ok := e.(*syntax.DictEntry)
		if !ok {
			continue
		}
		key, ok := entry.Key.(*syntax.Literal)
		if !ok || key.Token != syntax.STRING {
			continue
		}
		ret = append(ret, exprs.Field{
			Key:   key.Value.(string),
			Value: l.expr(entry.Value),
		})
	}
	return
}

func (l *lowerer) percent(e *syntax.BinaryExpr) exprs.Expr {
	ret := exprs.Percent{
		Node:   l.node(e),
		Format: l.expr(e.X),
	}
	switch y := e.Y.(type) {
	case *syntax.TupleExpr:
		ret.Args = l.exprs(y.List)
	case *syntax.ParenExpr:
		if tuple, ok := y.X.(*syntax.TupleExpr); ok {
			ret.Args = l.exprs(tuple.List)
		} else {
			ret.Args = []exprs.Expr{l.expr(y.X)}
		}
	case *syntax.DictExpr:
		for _, field := range l.fields(y) {
			ret.Kwargs = append(ret.Kwargs, exprs.Keyword{
				Name:  field.Key,
				Value: field.Value,
			})
		}
	default:
		ret.Args = []exprs.Expr{l.expr(y)}
	}
	return ret
}

func (l *lowerer) arguments(list []syntax.Expr) (args []exprs.Expr, kwargs []exprs.Keyword) {
	for _, arg := range list {
		if binary, ok := arg.(*syntax.BinaryExpr); ok && binary.Op == syntax.EQ {
			if ident, ok := binary.X.(*syntax.Ident); ok {
				kwargs = append(kwargs, exprs.Keyword{
					Name:  ident.Name,
					Value: l.expr(binary.Y),
				})
				continue
			}
		}
		args = append(args, l.expr(arg))
	}
	return
}

func (l *lowerer) call(e *syntax.CallExpr) exprs.Expr {
	args, kwargs := l.arguments(e.Args)
	if dot, ok := e.Fn.(*syntax.DotExpr); ok && dot.Name.Name == "format" {
		return exprs.TemplateCall{
			Node:     l.node(e),
			Template: l.expr(dot.X),
			Args:     args,
			Kwargs:   kwargs,
		}
	}
	return exprs.Call{
		Node:     l.node(e),
		Callee:   l.text(e.Fn),
		Args:     args,
		Keywords: kwargs,
	}
}

func (l *lowerer) callSite(e *syntax.CallExpr) exprs.CallSite {
	args, kwargs := l.arguments(e.Args)
	start, _ := e.Span()
	return exprs.CallSite{
		Callee:   l.text(e.Fn),
		Args:     args,
		Keywords: kwargs,
		Line:     l.line(start),
		Col:      int(start.Col),
	}
}
