package messages

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/reusee/sublingual/bindings"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/grammars"
	"github.com/reusee/sublingual/resolvers"
)

func str(s string) exprs.Str {
	return exprs.Str{
		Node:  exprs.Node{Source: `"` + s + `"`},
		Value: s,
	}
}

func name(n string) exprs.Name {
	return exprs.Name{
		Node:  exprs.Node{Source: n},
		Ident: n,
	}
}

func message(fields ...exprs.Field) exprs.Record {
	return exprs.Record{
		Fields: fields,
	}
}

func TestProjectList(t *testing.T) {
	env := bindings.Env{
		"sys": {Expr: str("You are terse.")},
		"q": {Expr: exprs.Percent{
			Format: str("Q: %s"),
			Args:   []exprs.Expr{name("question")},
		}},
		"first": {Expr: message(
			exprs.Field{Key: "role", Value: str("system")},
			exprs.Field{Key: "content", Value: name("sys")},
		)},
	}
	arg := exprs.List{
		Elems: []exprs.Expr{
			name("first"),
			message(
				exprs.Field{Key: "Role", Value: str("user")},
				exprs.Field{Key: "Content", Value: name("q")},
				exprs.Field{Key: "weight", Value: exprs.Const{Text: "2"}},
			),
			str("not a message"),
		},
	}
	got := Project(arg, env, resolvers.Locals{"question": "why?"})
	expected := Projection{
		Messages: []Message{
			{
				"role":    "system",
				"content": grammars.Literal{Value: "You are terse."},
			},
			{
				"role": "user",
				"content": grammars.NewFormat(
					grammars.Literal{Value: "Q: {}"},
					[]grammars.Grammar{grammars.InferredVar{Name: "question", Value: "why?"}},
					nil,
				),
				"weight": int64(2),
			},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestProjectSingle(t *testing.T) {
	got := Project(message(
		exprs.Field{Key: "role", Value: name("role")},
		exprs.Field{Key: "content", Value: str("hi")},
		exprs.Field{Key: "tag", Value: exprs.Call{Node: exprs.Node{Source: "tag()"}}},
	), bindings.Env{
		"role": {Expr: str("user")},
	}, nil)
	if !got.Single || len(got.Messages) != 1 {
		t.Fatalf("got %+v", got)
	}
	m := got.Messages[0]
	if m["role"] != "user" {
		t.Fatalf("got %v", m["role"])
	}
	if !grammars.Equal(m["tag"].(grammars.Grammar), grammars.Var{Name: "tag()"}) {
		t.Fatalf("got %v", m["tag"])
	}
}

func TestProjectPlaceholders(t *testing.T) {
	cases := []struct {
		arg      exprs.Expr
		expected string
	}{
		{exprs.List{}, "<Expected non-empty list of message dictionaries, got empty list>"},
		{message(exprs.Field{Key: "role", Value: str("user")}), "<Expected valid message dictionary with 'content' field, got dictionary without content>"},
		{exprs.Call{Node: exprs.Node{Source: "build()"}}, "<Expected a list of message dictionaries or a single message dictionary, got Call>"},
		{name("unknown"), "<Expected a list of message dictionaries or a single message dictionary, got Name>"},
	}
	for _, c := range cases {
		got := Project(c.arg, nil, nil)
		if !got.IsPlaceholder() || got.Placeholder != c.expected {
			t.Fatalf("got %+v", got)
		}
		if got.Tree() != c.expected {
			t.Fatalf("got %v", got.Tree())
		}
	}
}

func TestProjectFromLocals(t *testing.T) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	got := Project(name("history"), nil, resolvers.Locals{
		"history": []msg{
			{Role: "user", Content: "hello"},
		},
	})
	if len(got.Messages) != 1 {
		t.Fatalf("got %+v", got)
	}
	content, ok := got.Content(0)
	if !ok || !grammars.Equal(content, grammars.Literal{Value: "hello"}) {
		t.Fatalf("got %v", content)
	}
	if got.Messages[0]["role"] != "user" {
		t.Fatalf("got %v", got.Messages[0])
	}
}

func TestProjectionJSON(t *testing.T) {
	p := Projection{
		Messages: []Message{
			{
				"role": "user",
				"content": grammars.NewConcat(
					grammars.Literal{Value: "hi "},
					grammars.InferredVar{Name: "who", Value: "Ada"},
				),
				"name": grammars.Var{Name: "speaker"},
			},
		},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var got Projection
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatal(diff)
	}

	single := Projection{
		Messages: []Message{{"content": grammars.Literal{Value: "x"}}},
		Single:   true,
	}
	data, err = json.Marshal(single)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"content":{"type":"Literal","value":"x"}}` {
		t.Fatalf("got %s", data)
	}
	got = Projection{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Single {
		t.Fatal()
	}

	data, err = json.Marshal(Placeholder("<grammar unavailable: x>"))
	if err != nil {
		t.Fatal(err)
	}
	got = Projection{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Placeholder != "<grammar unavailable: x>" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseConst(t *testing.T) {
	cases := []struct {
		text     string
		expected any
	}{
		{"True", true},
		{"false", false},
		{"None", nil},
		{"42", int64(42)},
		{"0x10", int64(16)},
		{"1.5", 1.5},
		{"'a'", "'a'"},
	}
	for _, c := range cases {
		if got := ParseConst(c.text); got != c.expected {
			t.Fatalf("%s: got %v", c.text, got)
		}
	}
}
