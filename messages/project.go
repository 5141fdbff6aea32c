package messages

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/sublingual/bindings"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/grammars"
	"github.com/reusee/sublingual/resolvers"
)

const (
	emptyList      = "<Expected non-empty list of message dictionaries, got empty list>"
	withoutContent = "<Expected valid message dictionary with 'content' field, got dictionary without content>"
	unexpectedKind = "<Expected a list of message dictionaries or a single message dictionary, got %s>"
)

// Project maps the message argument of a call to grammar-annotated messages
func Project(arg exprs.Expr, env bindings.Env, locals resolvers.Locals) Projection {
	if name, ok := arg.(exprs.Name); ok {
		if binding, ok := env[name.Ident]; ok && binding.Expr != nil {
			arg = binding.Expr
		} else if v, ok := locals[name.Ident]; ok && v != nil {
			return FromValue(v)
		}
	}

	switch arg := arg.(type) {

	case exprs.List:
		var ret Projection
		for _, elem := range arg.Elems {
			if name, ok := elem.(exprs.Name); ok {
				if binding, ok := env[name.Ident]; ok && binding.Expr != nil {
					elem = binding.Expr
				}
			}
			record, ok := elem.(exprs.Record)
			if !ok {
				continue
			}
			ret.Messages = append(ret.Messages, projectRecord(record, env, locals))
		}
		if len(ret.Messages) == 0 {
			return Placeholder(emptyList)
		}
		return ret

	case exprs.Record:
		m := projectRecord(arg, env, locals)
		if _, ok := m[ContentKey]; !ok {
			return Placeholder(withoutContent)
		}
		return Projection{
			Messages: []Message{m},
			Single:   true,
		}

	}

	return Placeholder(fmt.Sprintf(unexpectedKind, exprs.Kind(arg)))
}

func projectRecord(record exprs.Record, env bindings.Env, locals resolvers.Locals) Message {
	m := make(Message, len(record.Fields))
	for _, field := range record.Fields {
		key := strings.ToLower(field.Key)
		if key == ContentKey {
			m[key] = resolvers.Resolve(field.Value, env, locals)
			continue
		}
		m[key] = literal(field.Value, env, locals)
	}
	return m
}

// literal evaluates constant field values without running program logic
func literal(expr exprs.Expr, env bindings.Env, locals resolvers.Locals) any {
	switch expr := expr.(type) {
	case exprs.Str:
		return expr.Value
	case exprs.Const:
		return ParseConst(expr.Text)
	case exprs.Name:
		if binding, ok := env[expr.Ident]; ok && !binding.Dynamic {
			switch bound := binding.Expr.(type) {
			case exprs.Str:
				return bound.Value
			case exprs.Const:
				return ParseConst(bound.Text)
			}
		}
		if v, ok := locals[expr.Ident]; ok {
			return v
		}
	}
	return grammars.Var{Name: exprs.Text(expr)}
}

// ParseConst converts the textual form of a non-string constant
func ParseConst(text string) any {
	switch text {
	case "true", "True":
		return true
	case "false", "False":
		return false
	case "nil", "None":
		return nil
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// FromValue projects a runtime message value. Contents become literals.
func FromValue(v any) Projection {
	normalized, err := normalize(v)
	if err != nil {
		return Placeholder(fmt.Sprintf(unexpectedKind, fmt.Sprintf("%T", v)))
	}

	switch normalized := normalized.(type) {
	case []any:
		var ret Projection
		for _, elem := range normalized {
			record, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			ret.Messages = append(ret.Messages, valueMessage(record))
		}
		if len(ret.Messages) == 0 {
			return Placeholder(emptyList)
		}
		return ret

	case map[string]any:
		m := valueMessage(normalized)
		if _, ok := m[ContentKey]; !ok {
			return Placeholder(withoutContent)
		}
		return Projection{
			Messages: []Message{m},
			Single:   true,
		}
	}

	return Placeholder(fmt.Sprintf(unexpectedKind, fmt.Sprintf("%T", v)))
}

func valueMessage(record map[string]any) Message {
	m := make(Message, len(record))
	for key, value := range record {
		key = strings.ToLower(key)
		if key == ContentKey {
			s, ok := value.(string)
			if !ok {
				s = fmt.Sprint(value)
			}
			m[key] = grammars.Literal{Value: s}
			continue
		}
		m[key] = value
	}
	return m
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		switch v.(type) {
		case []any, map[string]any:
			return v, nil
		}
		return nil, err
	}
	var ret any
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
