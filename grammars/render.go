package grammars

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/sublingual/templates"
)

// Value returns the string the grammar denotes. Var renders as its name.
func Value(g Grammar) string {
	return Render(g, nil)
}

// Render is Value with variables replaced by bindings
func Render(g Grammar, bindings map[string]string) string {
	var b strings.Builder
	render(&b, g, bindings)
	return b.String()
}

func render(b *strings.Builder, g Grammar, bindings map[string]string) {
	switch g := g.(type) {

	case Literal:
		b.WriteString(g.Value)

	case Var:
		if v, ok := bindings[g.Name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(g.Name)
		}

	case InferredVar:
		if v, ok := bindings[g.Name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(valueString(g.Value))
		}

	case Concat:
		for _, part := range g.Parts {
			render(b, part, bindings)
		}

	case Format:
		args := make([]any, 0, len(g.Args)+1)
		for _, arg := range g.Args {
			args = append(args, Render(arg, bindings))
		}
		if len(g.Kwargs) > 0 {
			named := make(templates.Named, len(g.Kwargs))
			for key, value := range g.Kwargs {
				named[key] = Render(value, bindings)
			}
			args = append(args, named)
		}
		b.WriteString(templates.Format(Render(g.Base, bindings), args...))

	}
}

func valueString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(v)
}

// Flatten returns the leaf sequence of g with adjacent literals merged.
// Formats with a literal base are expanded into their template text and arguments.
func Flatten(g Grammar) []Grammar {
	var leaves []Grammar
	flatten(&leaves, g)

	ret := leaves[:0]
	for _, leaf := range leaves {
		lit, ok := leaf.(Literal)
		if ok && lit.Value == "" {
			continue
		}
		if ok && len(ret) > 0 {
			if last, ok := ret[len(ret)-1].(Literal); ok {
				ret[len(ret)-1] = Literal{Value: last.Value + lit.Value}
				continue
			}
		}
		ret = append(ret, leaf)
	}
	return ret
}

func flatten(out *[]Grammar, g Grammar) {
	switch g := g.(type) {

	case Literal, Var, InferredVar:
		*out = append(*out, g)

	case Concat:
		for _, part := range g.Parts {
			flatten(out, part)
		}

	case Format:
		base, ok := g.Base.(Literal)
		if !ok {
			*out = append(*out, Var{Name: g.String()})
			return
		}
		segments, err := templates.Parse(base.Value)
		if err != nil {
			*out = append(*out, base)
			return
		}
		auto := 0
		for _, seg := range segments {
			if !seg.Field {
				*out = append(*out, Literal{Value: seg.Text})
				continue
			}
			arg, ok := g.field(seg.Name, &auto)
			if !ok {
				*out = append(*out, Var{Name: seg.Source()})
				continue
			}
			flatten(out, arg)
		}

	}
}

func (f Format) field(name string, auto *int) (Grammar, bool) {
	if name == "" {
		i := *auto
		*auto++
		if i < len(f.Args) {
			return f.Args[i], true
		}
		return nil, false
	}
	if i, err := strconv.Atoi(name); err == nil {
		if i >= 0 && i < len(f.Args) {
			return f.Args[i], true
		}
		return nil, false
	}
	g, ok := f.Kwargs[name]
	return g, ok
}
