package exprs

// Node is the position and source text shared by every expression
type Node struct {
	Line   int
	Source string
}

func (n Node) node() Node {
	return n
}

// Expr is the closed set of expression shapes the front-ends lower into
type Expr interface {
	node() Node
}

type Name struct {
	Node
	Ident string
}

type Str struct {
	Node
	Value string
}

// Const is a non-string constant in its textual form
type Const struct {
	Node
	Text string
}

// Interp is an interpolated string. Template is a brace template with one slot per arg.
type Interp struct {
	Node
	Template string
	Args     []Expr
}

type Add struct {
	Node
	X, Y Expr
}

// Percent is printf-style templating
type Percent struct {
	Node
	Format Expr
	Args   []Expr
	Kwargs []Keyword
}

// TemplateCall is an explicit brace template call like tmpl.format(...)
type TemplateCall struct {
	Node
	Template Expr
	Args     []Expr
	Kwargs   []Keyword
}

// Call is any call not recognized as templating
type Call struct {
	Node
	Callee   string
	Args     []Expr
	Keywords []Keyword
}

type List struct {
	Node
	Elems []Expr
}

type Record struct {
	Node
	Fields []Field
}

type Unknown struct {
	Node
}

type Keyword struct {
	Name  string
	Value Expr
}

type Field struct {
	Key   string
	Value Expr
}

func Text(e Expr) string {
	if e == nil {
		return ""
	}
	return e.node().Source
}

func Line(e Expr) int {
	if e == nil {
		return 0
	}
	return e.node().Line
}

func Kind(e Expr) string {
	switch e.(type) {
	case Name:
		return "Name"
	case Str:
		return "Str"
	case Const:
		return "Const"
	case Interp:
		return "Interp"
	case Add:
		return "Add"
	case Percent:
		return "Percent"
	case TemplateCall:
		return "TemplateCall"
	case Call:
		return "Call"
	case List:
		return "List"
	case Record:
		return "Record"
	case Unknown:
		return "Unknown"
	}
	return "nil"
}

func Children(e Expr) (ret []Expr) {
	switch e := e.(type) {
	case Interp:
		ret = append(ret, e.Args...)
	case Add:
		ret = append(ret, e.X, e.Y)
	case Percent:
		ret = append(ret, e.Format)
		ret = append(ret, e.Args...)
		ret = appendKeywords(ret, e.Kwargs)
	case TemplateCall:
		ret = append(ret, e.Template)
		ret = append(ret, e.Args...)
		ret = appendKeywords(ret, e.Kwargs)
	case Call:
		ret = append(ret, e.Args...)
		ret = appendKeywords(ret, e.Keywords)
	case List:
		ret = append(ret, e.Elems...)
	case Record:
		for _, field := range e.Fields {
			ret = append(ret, field.Value)
		}
	}
	return
}

func appendKeywords(ret []Expr, kws []Keyword) []Expr {
	for _, kw := range kws {
		ret = append(ret, kw.Value)
	}
	return ret
}

// ContainsOtherCall reports whether e has a call that is not recognized templating
func ContainsOtherCall(e Expr) bool {
	if _, ok := e.(Call); ok {
		return true
	}
	for _, child := range Children(e) {
		if ContainsOtherCall(child) {
			return true
		}
	}
	return false
}
