package starsources

import (
	"fmt"
	"strings"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/locators"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Frontend lowers Starlark source files
type Frontend struct{}

var _ explains.Frontend = Frontend{}

func (Frontend) Syntax() locators.Syntax {
	return locators.StarlarkSyntax
}

func (Frontend) Load(frame explains.Frame) (*explains.Unit, error) {
	src, err := frame.ReadSource()
	if err != nil {
		return nil, err
	}
	file, err := fileOptions.Parse(frame.File, src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", explains.ErrParse, err)
	}

	lines := explains.SplitLines(src)
	l := newLowerer(strings.Join(lines, "\n"), 0)
	unit := &explains.Unit{
		Lines:         lines,
		ParseFragment: parseFragment,
	}

	module := l.stmts(file.Stmts)
	if def := enclosing(file.Stmts, frame.Line); def != nil {
		start, end := def.Span()
		unit.Body = l.stmts(def.Body)
		unit.Start = int(start.Line)
		unit.End = int(end.Line)
		unit.Globals = module
	} else {
		unit.Body = module
		unit.Start = 1
		unit.End = len(lines)
	}

	return unit, nil
}

// enclosing returns the innermost def containing line
func enclosing(stmts []syntax.Stmt, line int) (ret *syntax.DefStmt) {
	for _, stmt := range stmts {
		start, end := stmt.Span()
		if line < int(start.Line) || line > int(end.Line) {
			continue
		}
		switch stmt := stmt.(type) {
		case *syntax.DefStmt:
			if inner := enclosing(stmt.Body, line); inner != nil {
				return inner
			}
			return stmt
		case *syntax.IfStmt:
			if def := enclosing(stmt.True, line); def != nil {
				return def
			}
			return enclosing(stmt.False, line)
		case *syntax.ForStmt:
			return enclosing(stmt.Body, line)
		case *syntax.WhileStmt:
			return enclosing(stmt.Body, line)
		}
	}
	return nil
}

func parseFragment(text string, firstLine int) ([]exprs.CallSite, error) {
	// continuation lines are inside brackets, only the first line's indentation matters
	text = strings.TrimLeft(text, " \t")
	file, err := fileOptions.Parse("", text, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", explains.ErrParse, err)
	}
	l := newLowerer(text, firstLine-1)
	var sites []exprs.CallSite
	for _, stmt := range file.Stmts {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if call, ok := n.(*syntax.CallExpr); ok {
				sites = append(sites, l.callSite(call))
			}
			return true
		})
	}
	return sites, nil
}
