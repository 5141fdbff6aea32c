package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/reusee/sublingual/grammars"
)

// Message is one chat message. The content key holds a grammars.Grammar.
type Message map[string]any

const ContentKey = "content"

// Projection is the grammar-annotated message argument of an intercepted call
type Projection struct {
	Messages    []Message
	Single      bool
	Placeholder string
}

func Placeholder(text string) Projection {
	return Projection{
		Placeholder: text,
	}
}

func (p Projection) IsPlaceholder() bool {
	return p.Placeholder != "" || len(p.Messages) == 0
}

// Content returns the content grammar of the i-th message
func (p Projection) Content(i int) (grammars.Grammar, bool) {
	if i < 0 || i >= len(p.Messages) {
		return nil, false
	}
	g, ok := p.Messages[i][ContentKey].(grammars.Grammar)
	return g, ok
}

// Tree returns a JSON-compatible value: a list of records, a record, or a placeholder string
func (p Projection) Tree() any {
	if p.IsPlaceholder() {
		return p.Placeholder
	}
	if p.Single {
		return messageTree(p.Messages[0])
	}
	ret := make([]any, 0, len(p.Messages))
	for _, m := range p.Messages {
		ret = append(ret, messageTree(m))
	}
	return ret
}

func messageTree(m Message) map[string]any {
	ret := make(map[string]any, len(m))
	for key, value := range m {
		if g, ok := value.(grammars.Grammar); ok {
			ret[key] = grammars.ToTree(g)
			continue
		}
		ret[key] = value
	}
	return ret
}

func (p Projection) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Tree())
}

func (p *Projection) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ret, err := FromTree(v)
	if err != nil {
		return err
	}
	*p = ret
	return nil
}

var ErrMalformed = errors.New("malformed projection")

// FromTree is the inverse of Projection.Tree
func FromTree(v any) (Projection, error) {
	switch v := v.(type) {
	case string:
		return Placeholder(v), nil
	case map[string]any:
		m, err := messageFromTree(v)
		if err != nil {
			return Projection{}, err
		}
		return Projection{
			Messages: []Message{m},
			Single:   true,
		}, nil
	case []any:
		var ret Projection
		for _, elem := range v {
			tree, ok := elem.(map[string]any)
			if !ok {
				return Projection{}, fmt.Errorf("%w: message is %T", ErrMalformed, elem)
			}
			m, err := messageFromTree(tree)
			if err != nil {
				return Projection{}, err
			}
			ret.Messages = append(ret.Messages, m)
		}
		return ret, nil
	}
	return Projection{}, fmt.Errorf("%w: %T", ErrMalformed, v)
}

func messageFromTree(tree map[string]any) (Message, error) {
	m := Message(maps.Clone(tree))
	for key, value := range tree {
		sub, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if key != ContentKey && sub["type"] != grammars.TypeVar {
			continue
		}
		g, err := grammars.FromTree(sub)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
		}
		m[key] = g
	}
	return m, nil
}
