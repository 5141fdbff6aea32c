package starsources

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/grammars"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/resolvers"
)

const script = `
SYSTEM = "You are terse."

b = "hi"
c = "lo"
d = b + c
e = "i am %s!" % d
f = "i am {}!".format(d)
chat(messages = [ # inlining
    {"role": "system", "content": SYSTEM},
    {"role": "user", "content": e},
    {"role": "user", "content": f},
])

def equivalence():
    x = "Sum: {} + {} = {}".format(1, 2, 3)
    y = "Sum: %d + %d = %d" % (1, 2, 3)
    z = "Sum: %(a)d + %(b)d = %(c)d" % {"a": 1, "b": 2, "c": 3}
    return chat(messages = [{"content": x}, {"content": y}, {"content": z}]) # equivalence

def dynamic(n):
    x = "hello"
    if n > 0:
        x = x + " world"
    return chat(messages = [{"role": "user", "content": x}]) # dynamic

def cycle(s):
    s = s + "x"
    return chat(messages = [{"role": "user", "content": s}]) # cycle

def appending(question, name):
    msgs = [{"role": "system", "content": SYSTEM}]
    msgs.append({"role": "user", "content": "Q: " + question})
    msgs.append({"role": "user", "content": "hello {who}".format(who = name)})
    for m in msgs:
        pass
    return chat(msgs) # appending

def single():
    return chat(messages = {"role": "user", "content": "just one"}) # single

def opaque():
    return chat(messages = build()) # opaque
`

var chatTarget = locators.Target{
	Func:    "chat",
	Keyword: "messages",
}

func lineOf(t *testing.T, src, marker string) int {
	for i, line := range strings.Split(src, "\n") {
		if strings.Contains(line, marker) {
			return i + 1
		}
	}
	t.Fatalf("no marker %s", marker)
	return 0
}

func explain(t *testing.T, marker string, locals resolvers.Locals) explains.Result {
	t.Helper()
	return explains.Explain(Frontend{}, explains.Frame{
		File:   "script.star",
		Line:   lineOf(t, script, marker),
		Source: []byte(script),
		Locals: locals,
	}, chatTarget)
}

func contents(t *testing.T, res explains.Result) []grammars.Grammar {
	t.Helper()
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	var ret []grammars.Grammar
	for i := range res.Projection.Messages {
		g, ok := res.Projection.Content(i)
		if !ok {
			t.Fatalf("no content in %v", res.Projection.Messages[i])
		}
		ret = append(ret, g)
	}
	return ret
}

func lit(s string) grammars.Literal {
	return grammars.Literal{Value: s}
}

func TestStaticInlining(t *testing.T) {
	res := explain(t, "# inlining", nil)
	iAm := grammars.NewFormat(
		lit("i am {}!"),
		[]grammars.Grammar{grammars.NewConcat(lit("hi"), lit("lo"))},
		nil,
	)
	expected := []grammars.Grammar{
		lit("You are terse."),
		iAm,
		iAm,
	}
	if diff := cmp.Diff(expected, contents(t, res)); diff != "" {
		t.Fatal(diff)
	}
	if res.Projection.Messages[0]["role"] != "system" {
		t.Fatalf("got %v", res.Projection.Messages[0])
	}
}

func TestTemplateEquivalence(t *testing.T) {
	got := contents(t, explain(t, "# equivalence", nil))
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	if !grammars.Equal(got[0], got[1]) {
		t.Fatalf("got %v and %v", got[0], got[1])
	}
	for _, g := range got {
		if grammars.Value(g) != "Sum: 1 + 2 = 3" {
			t.Fatalf("got %q", grammars.Value(g))
		}
	}
	named := grammars.NewFormat(
		lit("Sum: {a} + {b} = {c}"),
		nil,
		map[string]grammars.Grammar{
			"a": lit("1"),
			"b": lit("2"),
			"c": lit("3"),
		},
	)
	if !grammars.Equal(got[2], named) {
		t.Fatalf("got %v", got[2])
	}
}

func TestDynamicOpacity(t *testing.T) {
	got := contents(t, explain(t, "# dynamic", nil))
	if diff := cmp.Diff([]grammars.Grammar{grammars.Var{Name: "x"}}, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestCycleSafety(t *testing.T) {
	got := contents(t, explain(t, "# cycle", nil))
	expected := []grammars.Grammar{
		grammars.NewConcat(grammars.Var{Name: "s"}, lit("x")),
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestAppend(t *testing.T) {
	got := contents(t, explain(t, "# appending", resolvers.Locals{
		"question": "why?",
		"name":     "Ada",
	}))
	expected := []grammars.Grammar{
		lit("You are terse."),
		grammars.NewConcat(lit("Q: "), grammars.InferredVar{Name: "question", Value: "why?"}),
		grammars.NewFormat(
			lit("hello {who}"),
			nil,
			map[string]grammars.Grammar{
				"who": grammars.InferredVar{Name: "name", Value: "Ada"},
			},
		),
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestSingleMessage(t *testing.T) {
	res := explain(t, "# single", nil)
	if !res.Projection.Single {
		t.Fatalf("got %+v", res.Projection)
	}
	if diff := cmp.Diff([]grammars.Grammar{lit("just one")}, contents(t, res)); diff != "" {
		t.Fatal(diff)
	}
}

func TestOpaqueArgument(t *testing.T) {
	res := explain(t, "# opaque", nil)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Projection.Placeholder != "<Expected a list of message dictionaries or a single message dictionary, got Call>" {
		t.Fatalf("got %+v", res.Projection)
	}
}

func TestDegradation(t *testing.T) {
	res := explains.Explain(Frontend{}, explains.Frame{
		File: "/no/such/script.star",
		Line: 3,
	}, chatTarget)
	if !errors.Is(res.Err, explains.ErrSourceUnavailable) {
		t.Fatalf("got %v", res.Err)
	}
	if !strings.HasPrefix(res.Projection.Placeholder, "<grammar unavailable: ") {
		t.Fatalf("got %v", res.Projection.Tree())
	}

	res = explains.Explain(Frontend{}, explains.Frame{
		File:   "bad.star",
		Line:   1,
		Source: []byte("def (:\n"),
	}, chatTarget)
	if !errors.Is(res.Err, explains.ErrParse) {
		t.Fatalf("got %v", res.Err)
	}
}
