package grammars

import (
	"encoding/json"
	"reflect"
)

// Equal reports structural equality
func Equal(a, b Grammar) bool {
	switch a := a.(type) {

	case nil:
		return b == nil

	case Literal:
		b, ok := b.(Literal)
		return ok && a.Value == b.Value

	case Var:
		b, ok := b.(Var)
		return ok && a.Name == b.Name

	case InferredVar:
		b, ok := b.(InferredVar)
		return ok && a.Name == b.Name && valueEqual(a.Value, b.Value)

	case Concat:
		b, ok := b.(Concat)
		if !ok || len(a.Parts) != len(b.Parts) {
			return false
		}
		for i := range a.Parts {
			if !Equal(a.Parts[i], b.Parts[i]) {
				return false
			}
		}
		return true

	case Format:
		b, ok := b.(Format)
		if !ok ||
			!Equal(a.Base, b.Base) ||
			len(a.Args) != len(b.Args) ||
			len(a.Kwargs) != len(b.Kwargs) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		for key, value := range a.Kwargs {
			other, ok := b.Kwargs[key]
			if !ok || !Equal(value, other) {
				return false
			}
		}
		return true

	}
	return false
}

// observed values are untyped; values that differ only by their json representation are equal
func valueEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(ca, cb)
}

func canonical(v any) (ret any, err error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bs, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
