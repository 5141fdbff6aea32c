package templates

import (
	"strconv"
	"strings"
)

// FromPercent lowers a printf-style format (Go verbs or Python %-formatting) into
// a brace template. Literal braces in the format are escaped.
func FromPercent(format string) string {
	type field struct {
		index int
		name  string
	}

	var parts []any // string or field
	explicit := false
	argNum := 0

	text := new(strings.Builder)
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, text.String())
			text.Reset()
		}
	}

	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			text.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(format) {
			text.WriteByte('%')
			break
		}
		if format[i+1] == '%' {
			text.WriteByte('%')
			i += 2
			continue
		}

		j := i + 1
		var f field
		f.index = -1

		// python mapping key
		if format[j] == '(' {
			end := strings.IndexByte(format[j:], ')')
			if end < 0 {
				text.WriteString(format[i:])
				break
			}
			f.name = format[j+1 : j+end]
			j += end + 1
		}

		// flags, width, precision, explicit go index
		for j < len(format) {
			c := format[j]
			if strings.IndexByte("#0- +.*123456789", c) >= 0 {
				j++
				continue
			}
			if c == '[' {
				end := strings.IndexByte(format[j:], ']')
				if end < 0 {
					break
				}
				if n, err := strconv.Atoi(format[j+1 : j+end]); err == nil && n > 0 {
					argNum = n - 1
					explicit = true
				}
				j += end + 1
				continue
			}
			// python length modifiers
			if c == 'h' || c == 'l' || c == 'L' {
				j++
				continue
			}
			break
		}

		if j >= len(format) || !isVerb(format[j]) {
			text.WriteString(format[i:min(j+1, len(format))])
			i = j + 1
			continue
		}

		if f.name == "" {
			f.index = argNum
			argNum++
		}
		flush()
		parts = append(parts, f)
		i = j + 1
	}
	flush()

	var b strings.Builder
	for _, part := range parts {
		switch part := part.(type) {
		case string:
			b.WriteString(Escape(part))
		case field:
			b.WriteByte('{')
			if part.name != "" {
				b.WriteString(part.name)
			} else if explicit {
				b.WriteString(strconv.Itoa(part.index))
			}
			b.WriteByte('}')
		}
	}
	return b.String()
}

func isVerb(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
