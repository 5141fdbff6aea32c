package locators

import "strings"

// Syntax describes the lexical elements the span scanner must skip
type Syntax struct {
	LineComment  string
	RawQuote     string // multi-line raw string delimiter, like ` in Go
	TripleQuotes bool   // """ and ''' strings
}

var (
	GoSyntax = Syntax{
		LineComment: "//",
		RawQuote:    "`",
	}
	StarlarkSyntax = Syntax{
		LineComment:  "#",
		TripleQuotes: true,
	}
)

var closers = map[byte]byte{
	')': '(',
	']': '[',
	'}': '{',
}

// Span returns the smallest run of lines starting at line (1-based) in which
// every bracket opened is closed. It reports the last line of the run.
func Span(lines []string, line int, syntax Syntax) (text string, last int, ok bool) {
	if line < 1 || line > len(lines) {
		return "", 0, false
	}

	var stack []byte
	quote := ""
	for i := line - 1; i < len(lines); i++ {
		l := lines[i]
	scan:
		for j := 0; j < len(l); j++ {
			c := l[j]

			if quote != "" {
				if c == '\\' && quote != syntax.RawQuote {
					j++
					continue
				}
				if strings.HasPrefix(l[j:], quote) {
					j += len(quote) - 1
					quote = ""
				}
				continue
			}

			if syntax.LineComment != "" && strings.HasPrefix(l[j:], syntax.LineComment) {
				break scan
			}

			switch c {
			case '"', '\'':
				q := string(c)
				if syntax.TripleQuotes && strings.HasPrefix(l[j:], q+q+q) {
					q = q + q + q
				}
				quote = q
				j += len(q) - 1
			case '(', '[', '{':
				stack = append(stack, c)
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1] != closers[c] {
					return "", 0, false
				}
				stack = stack[:len(stack)-1]
			default:
				if syntax.RawQuote != "" && strings.HasPrefix(l[j:], syntax.RawQuote) {
					quote = syntax.RawQuote
					j += len(quote) - 1
				}
			}
		}

		if quote == `"` || quote == "'" {
			// unterminated single line string
			quote = ""
		}
		if len(stack) == 0 && quote == "" {
			return strings.Join(lines[line-1:i+1], "\n"), i + 1, true
		}
	}

	return "", 0, false
}
