package templates

import (
	"fmt"
	"strconv"
	"strings"
)

// Named carries keyword arguments when passed as the last argument of Format
type Named map[string]any

type Template string

func (t Template) Format(args ...any) string {
	return Format(string(t), args...)
}

// Format fills a brace template the way Python's str.format does.
// Fields without a value are left as written.
func Format(template string, args ...any) string {
	var named Named
	if n := len(args); n > 0 {
		if m, ok := args[n-1].(Named); ok {
			named = m
			args = args[:n-1]
		}
	}

	segments, err := Parse(template)
	if err != nil {
		return template
	}

	var b strings.Builder
	auto := 0
	for _, seg := range segments {
		if !seg.Field {
			b.WriteString(seg.Text)
			continue
		}
		value, ok := lookup(seg.Name, &auto, args, named)
		if !ok {
			b.WriteString(seg.Source())
			continue
		}
		b.WriteString(toString(value))
	}

	return b.String()
}

func lookup(name string, auto *int, args []any, named Named) (any, bool) {
	if name == "" {
		i := *auto
		*auto++
		if i < len(args) {
			return args[i], true
		}
		return nil, false
	}
	if i, err := strconv.Atoi(name); err == nil {
		if i >= 0 && i < len(args) {
			return args[i], true
		}
		return nil, false
	}
	value, ok := named[name]
	return value, ok
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
