package extracts

import (
	"regexp"
	"strings"

	"github.com/reusee/sublingual/grammars"
)

// BuildPattern compiles a flat token sequence into an anchored regular expression.
// Each run of consecutive symbolic tokens becomes one lazy capture group, named
// by the symbols joined with " + ".
func BuildPattern(tokens []grammars.Grammar) (*regexp.Regexp, []string, error) {
	buf := new(strings.Builder)
	buf.WriteString("(?s)^")
	var names []string
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		buf.WriteString("(.+?)")
		names = append(names, strings.Join(run, " + "))
		run = run[:0]
	}

	for _, token := range tokens {
		switch token := token.(type) {
		case grammars.Literal:
			if token.Value == "" {
				continue
			}
			flush()
			buf.WriteString(regexp.QuoteMeta(token.Value))
		case grammars.Var:
			run = append(run, token.Name)
		case grammars.InferredVar:
			run = append(run, token.Name)
		case nil:
		default:
			run = append(run, token.String())
		}
	}
	flush()
	buf.WriteString("$")

	re, err := regexp.Compile(buf.String())
	if err != nil {
		return nil, nil, err
	}
	return re, names, nil
}

// Extract matches final against the token sequence and returns the substring
// bound to each symbol. The result is empty when final does not match.
func Extract(tokens []grammars.Grammar, final string) map[string]string {
	ret := make(map[string]string)
	re, names, err := BuildPattern(tokens)
	if err != nil {
		return ret
	}
	match := re.FindStringSubmatch(final)
	if match == nil {
		return ret
	}
	for i, name := range names {
		ret[name] = match[i+1]
	}
	return ret
}

func ExtractGrammar(g grammars.Grammar, final string) map[string]string {
	return Extract(grammars.Flatten(g), final)
}
