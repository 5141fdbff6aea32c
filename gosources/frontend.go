package gosources

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/locators"
	"golang.org/x/tools/go/ast/astutil"
)

// Frontend lowers Go source files
type Frontend struct{}

var _ explains.Frontend = Frontend{}

func (Frontend) Syntax() locators.Syntax {
	return locators.GoSyntax
}

func (Frontend) Load(frame explains.Frame) (*explains.Unit, error) {
	src, err := frame.ReadSource()
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, frame.File, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", explains.ErrParse, err)
	}

	l := &lowerer{
		fset:    fset,
		src:     src,
		imports: imports(file),
	}

	unit := &explains.Unit{
		Lines: explains.SplitLines(src),
		ParseFragment: func(text string, firstLine int) ([]exprs.CallSite, error) {
			return parseFragment(text, firstLine, l.imports)
		},
	}

	for _, decl := range file.Decls {
		unit.Globals = append(unit.Globals, l.decl(decl)...)
	}

	if body, start, end, ok := enclosing(fset, file, frame.Line); ok {
		unit.Body = l.stmts(body.List)
		unit.Start = start
		unit.End = end
	}

	return unit, nil
}

func imports(file *ast.File) map[string]string {
	ret := make(map[string]string)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		ret[name] = importPath
	}
	return ret
}

// enclosing returns the body of the innermost function containing line
func enclosing(fset *token.FileSet, file *ast.File, line int) (*ast.BlockStmt, int, int, bool) {
	tokenFile := fset.File(file.Pos())
	if tokenFile == nil || line < 1 || line > tokenFile.LineCount() {
		return nil, 0, 0, false
	}
	pos := tokenFile.LineStart(line)
	nodes, _ := astutil.PathEnclosingInterval(file, pos, pos)
	for _, node := range nodes {
		var body *ast.BlockStmt
		switch node := node.(type) {
		case *ast.FuncLit:
			body = node.Body
		case *ast.FuncDecl:
			body = node.Body
		}
		if body == nil {
			continue
		}
		return body,
			fset.Position(node.Pos()).Line,
			fset.Position(node.End()).Line,
			true
	}
	return nil, 0, 0, false
}

const (
	fragmentHeader = "package p\nfunc _() {\n"
	fragmentFooter = "\n}\n"
)

func parseFragment(text string, firstLine int, imports map[string]string) ([]exprs.CallSite, error) {
	src := []byte(fragmentHeader + text + fragmentFooter)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", explains.ErrParse, err)
	}

	l := &lowerer{
		fset: fset,
		src:  src,
		// fragment line 3 is firstLine
		lineOffset: firstLine - 3,
		imports:    imports,
	}
	var sites []exprs.CallSite
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		pos := fset.Position(call.Pos())
		sites = append(sites, exprs.CallSite{
			Callee: l.text(call.Fun),
			Args:   l.exprs(call.Args),
			Line:   pos.Line + l.lineOffset,
			Col:    pos.Column,
		})
		return true
	})
	return sites, nil
}
