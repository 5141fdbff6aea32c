package locators

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/reusee/sublingual/exprs"
)

// Window is the number of lines searched on each side of the reported line
const Window = 5

var ErrCallNotFound = errors.New("call not found")

// Target names the intercepted function and where its message argument is
type Target struct {
	Func     string
	Keyword  string
	Position int
}

// FragmentParser parses a span of source in isolation and returns the calls in it.
// firstLine is the line of the span's first line in the original file.
type FragmentParser func(text string, firstLine int) ([]exprs.CallSite, error)

// Locate finds the call to target nearest to line
func Locate(lines []string, line int, target Target, syntax Syntax, parse FragmentParser) (exprs.CallSite, error) {
	type position struct {
		line, col int
	}
	seen := make(map[position]bool)
	var calls []exprs.CallSite
	for start := max(1, line-Window); start <= min(len(lines), line+Window); start++ {
		text, _, ok := Span(lines, start, syntax)
		if !ok {
			continue
		}
		sites, err := parse(text, start)
		if err != nil {
			continue
		}
		for _, site := range sites {
			if !strings.Contains(site.Callee, target.Func) {
				continue
			}
			pos := position{site.Line, site.Col}
			if seen[pos] {
				continue
			}
			seen[pos] = true
			calls = append(calls, site)
		}
	}
	return Select(calls, line, target)
}

// Select picks the call on line, else the nearest preceding one, else the nearest following one
func Select(calls []exprs.CallSite, line int, target Target) (exprs.CallSite, error) {
	slices.SortStableFunc(calls, func(a, b exprs.CallSite) int {
		return cmp.Or(
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Col, b.Col),
		)
	})

	var preceding, following *exprs.CallSite
	for i, call := range calls {
		switch {
		case call.Line == line:
			return call, nil
		case call.Line < line && line-call.Line <= Window:
			if preceding == nil || preceding.Line != call.Line {
				preceding = &calls[i]
			}
		case call.Line > line && call.Line-line <= Window:
			if following == nil {
				following = &calls[i]
			}
		}
	}
	if preceding != nil {
		return *preceding, nil
	}
	if following != nil {
		return *following, nil
	}

	return exprs.CallSite{}, fmt.Errorf("%w: %s near line %d", ErrCallNotFound, target.Func, line)
}
