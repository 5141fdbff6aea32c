package grammars

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed grammar tree")

const (
	TypeLiteral     = "Literal"
	TypeVar         = "Var"
	TypeInferredVar = "InferredVar"
	TypeConcat      = "Concat"
	TypeFormat      = "Format"
)

// ToTree converts g to plain maps and slices suitable for json encoding
func ToTree(g Grammar) map[string]any {
	switch g := g.(type) {

	case Literal:
		return map[string]any{
			"type":  TypeLiteral,
			"value": g.Value,
		}

	case Var:
		return map[string]any{
			"type": TypeVar,
			"name": g.Name,
		}

	case InferredVar:
		return map[string]any{
			"type":  TypeInferredVar,
			"name":  g.Name,
			"value": encodable(g.Value),
		}

	case Concat:
		parts := make([]any, 0, len(g.Parts))
		for _, part := range g.Parts {
			parts = append(parts, ToTree(part))
		}
		return map[string]any{
			"type":  TypeConcat,
			"parts": parts,
		}

	case Format:
		args := make([]any, 0, len(g.Args))
		for _, arg := range g.Args {
			args = append(args, ToTree(arg))
		}
		kwargs := make(map[string]any, len(g.Kwargs))
		for key, value := range g.Kwargs {
			kwargs[key] = ToTree(value)
		}
		return map[string]any{
			"type":   TypeFormat,
			"base":   ToTree(g.Base),
			"args":   args,
			"kwargs": kwargs,
		}

	}
	return nil
}

// observed values that json cannot encode are kept as their printed form
func encodable(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}

// FromTree is the inverse of ToTree
func FromTree(v any) (Grammar, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expecting object, got %T", ErrMalformed, v)
	}
	typ, _ := m["type"].(string)

	switch typ {

	case TypeLiteral:
		value, ok := m["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: literal value is %T", ErrMalformed, m["value"])
		}
		return Literal{Value: value}, nil

	case TypeVar:
		name, ok := m["name"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: var name is %T", ErrMalformed, m["name"])
		}
		return Var{Name: name}, nil

	case TypeInferredVar:
		name, ok := m["name"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: inferred var name is %T", ErrMalformed, m["name"])
		}
		return InferredVar{Name: name, Value: m["value"]}, nil

	case TypeConcat:
		list, ok := m["parts"].([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("%w: concat without parts", ErrMalformed)
		}
		parts, err := fromTrees(list)
		if err != nil {
			return nil, err
		}
		return Concat{Parts: parts}, nil

	case TypeFormat:
		base, err := FromTree(m["base"])
		if err != nil {
			return nil, fmt.Errorf("format base: %w", err)
		}
		ret := Format{
			Base: base,
		}
		if list, ok := m["args"].([]any); ok {
			ret.Args, err = fromTrees(list)
			if err != nil {
				return nil, err
			}
		} else if m["args"] != nil {
			return nil, fmt.Errorf("%w: format args is %T", ErrMalformed, m["args"])
		}
		if kwargs, ok := m["kwargs"].(map[string]any); ok && len(kwargs) > 0 {
			ret.Kwargs = make(map[string]Grammar, len(kwargs))
			for key, value := range kwargs {
				g, err := FromTree(value)
				if err != nil {
					return nil, fmt.Errorf("format kwarg %s: %w", key, err)
				}
				ret.Kwargs[key] = g
			}
		}
		return ret, nil

	}

	return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, typ)
}

func fromTrees(list []any) ([]Grammar, error) {
	ret := make([]Grammar, 0, len(list))
	for _, elem := range list {
		g, err := FromTree(elem)
		if err != nil {
			return nil, err
		}
		ret = append(ret, g)
	}
	return ret, nil
}

func Marshal(g Grammar) ([]byte, error) {
	return json.Marshal(ToTree(g))
}

func Unmarshal(data []byte) (Grammar, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return FromTree(v)
}

func (l Literal) MarshalJSON() ([]byte, error) {
	return Marshal(l)
}

func (v Var) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

func (i InferredVar) MarshalJSON() ([]byte, error) {
	return Marshal(i)
}

func (c Concat) MarshalJSON() ([]byte, error) {
	return Marshal(c)
}

func (f Format) MarshalJSON() ([]byte, error) {
	return Marshal(f)
}
