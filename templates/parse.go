package templates

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnbalanced = errors.New("unbalanced braces")

type Segment struct {
	Text  string
	Field bool
	// Name is empty for automatic numbering, digits for an explicit index, otherwise a keyword
	Name string
	// Spec holds conversion and format spec verbatim, like "!r" or ":>10"
	Spec string
}

func (s Segment) Source() string {
	if !s.Field {
		return Escape(s.Text)
	}
	return "{" + s.Name + s.Spec + "}"
}

func Parse(template string) (ret []Segment, err error) {
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			ret = append(ret, Segment{
				Text: text.String(),
			})
			text.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {

		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				text.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed field at %d", ErrUnbalanced, i)
			}
			field := template[i+1 : i+1+end]
			if strings.IndexByte(field, '{') >= 0 {
				return nil, fmt.Errorf("%w: nested field at %d", ErrUnbalanced, i)
			}
			flush()
			name, spec := splitField(field)
			ret = append(ret, Segment{
				Field: true,
				Name:  name,
				Spec:  spec,
			})
			i += end + 1

		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				text.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at %d", ErrUnbalanced, i)

		default:
			text.WriteByte(c)
		}
	}
	flush()

	return
}

func splitField(field string) (name, spec string) {
	if i := strings.IndexAny(field, "!:"); i >= 0 {
		return field[:i], field[i:]
	}
	return field, ""
}

var escaper = strings.NewReplacer("{", "{{", "}", "}}")

func Escape(s string) string {
	return escaper.Replace(s)
}
