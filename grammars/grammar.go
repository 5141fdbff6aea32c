package grammars

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Grammar describes how a string value was constructed.
// The set of variants is closed: Literal, Var, InferredVar, Concat and Format.
type Grammar interface {
	isGrammar()
	String() string
}

// Literal is a fixed string segment known from program text
type Literal struct {
	Value string
}

// Var is an opaque reference to a value that could not be determined
type Var struct {
	Name string
}

// InferredVar is a value that could not be resolved statically but was observed at runtime
type InferredVar struct {
	Name  string
	Value any
}

// Concat is sequential concatenation
type Concat struct {
	Parts []Grammar
}

// Format is a brace template filled with positional and keyword arguments
type Format struct {
	Base   Grammar
	Args   []Grammar
	Kwargs map[string]Grammar
}

func (Literal) isGrammar()     {}
func (Var) isGrammar()         {}
func (InferredVar) isGrammar() {}
func (Concat) isGrammar()      {}
func (Format) isGrammar()      {}

func NewConcat(parts ...Grammar) Concat {
	return Concat{
		Parts: slices.Clone(parts),
	}
}

func NewFormat(base Grammar, args []Grammar, kwargs map[string]Grammar) Format {
	ret := Format{
		Base: base,
		Args: slices.Clone(args),
	}
	if len(kwargs) > 0 {
		ret.Kwargs = maps.Clone(kwargs)
	}
	return ret
}

func (l Literal) String() string {
	return "Literal(" + strconv.Quote(l.Value) + ")"
}

func (v Var) String() string {
	return "Var(" + strconv.Quote(v.Name) + ")"
}

func (i InferredVar) String() string {
	var value string
	if s, ok := i.Value.(string); ok {
		value = strconv.Quote(s)
	} else {
		value = fmt.Sprintf("%v", i.Value)
	}
	return "InferredVar(" + strconv.Quote(i.Name) + ", " + value + ")"
}

func (c Concat) String() string {
	parts := make([]string, 0, len(c.Parts))
	for _, part := range c.Parts {
		parts = append(parts, str(part))
	}
	return "Concat(" + strings.Join(parts, ", ") + ")"
}

func (f Format) String() string {
	parts := []string{str(f.Base)}
	for _, arg := range f.Args {
		parts = append(parts, str(arg))
	}
	for _, key := range slices.Sorted(maps.Keys(f.Kwargs)) {
		parts = append(parts, key+"="+str(f.Kwargs[key]))
	}
	return "Format(" + strings.Join(parts, ", ") + ")"
}

func str(g Grammar) string {
	if g == nil {
		return "<nil>"
	}
	return g.String()
}

func (l Literal) Equal(other Grammar) bool {
	return Equal(l, other)
}

func (v Var) Equal(other Grammar) bool {
	return Equal(v, other)
}

func (i InferredVar) Equal(other Grammar) bool {
	return Equal(i, other)
}

func (c Concat) Equal(other Grammar) bool {
	return Equal(c, other)
}

func (f Format) Equal(other Grammar) bool {
	return Equal(f, other)
}
