package intercepts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/configs"
	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/grammars"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/messages"
	"github.com/reusee/sublingual/modes"
	"github.com/reusee/sublingual/records"
	"github.com/reusee/sublingual/resolvers"
	"github.com/reusee/sublingual/starsources"
	"go.starlark.net/starlark"
)

func newScope(t *testing.T, defs ...any) dscope.Scope {
	return dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(defs...)
}

func readRecords(t *testing.T, writer records.Writer) (ret []records.Record) {
	for record, err := range records.Read(writer.(*records.FileWriter).Path()) {
		if err != nil {
			t.Fatal(err)
		}
		ret = append(ret, record)
	}
	return
}

func recordContent(t *testing.T, record records.Record) grammars.Grammar {
	projection, err := record.Projection()
	if err != nil {
		t.Fatal(err)
	}
	content, ok := projection.Content(0)
	if !ok {
		t.Fatalf("got %+v", projection)
	}
	return content
}

func TestClientChat(t *testing.T) {
	newScope(t).Call(func(
		client *Client,
		writer records.Writer,
	) {
		name := strings.ToLower("ALICE")
		greeting := "hello, " + name
		resp, err := client.Chat(context.Background(), []Message{
			{Role: "user", Content: greeting},
		}, resolvers.Locals{
			"name": name,
		})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Content != "hello, alice" {
			t.Fatalf("got %v", resp.Content)
		}

		recs := readRecords(t, writer)
		if len(recs) != 1 {
			t.Fatalf("got %v", recs)
		}
		record := recs[0]
		if record.Function != "Chat" ||
			!strings.HasSuffix(record.File, "intercepts_test.go") ||
			record.GrammarError != "" {
			t.Fatalf("got %+v", record)
		}
		if len(record.StackTrace) == 0 ||
			!strings.Contains(record.StackTrace[len(record.StackTrace)-1].Function, "TestClientChat") {
			t.Fatalf("got %+v", record.StackTrace)
		}
		expected := grammars.NewConcat(
			grammars.Literal{Value: "hello, "},
			grammars.InferredVar{Name: "name", Value: "alice"},
		)
		content := recordContent(t, record)
		if !grammars.Equal(content, expected) {
			t.Fatalf("got %v", content)
		}
		if grammars.Value(content) != greeting {
			t.Fatalf("got %q", grammars.Value(content))
		}
	})
}

func TestInterceptDegraded(t *testing.T) {
	newScope(t).Call(func(
		intercept Intercept,
		writer records.Writer,
	) {
		resp, err := intercept(context.Background(), Call{
			Function: "Chat",
			Frame: explains.Frame{
				File: "/nonexistent/main.go",
				Line: 3,
			},
			Request: Request{
				Messages: []Message{{Role: "user", Content: "hi"}},
			},
			Explain: func() explains.Result {
				panic("boom")
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Content != "hi" {
			t.Fatalf("got %v", resp)
		}

		recs := readRecords(t, writer)
		if len(recs) != 1 {
			t.Fatalf("got %v", recs)
		}
		if !strings.Contains(recs[0].GrammarError, "boom") {
			t.Fatalf("got %v", recs[0].GrammarError)
		}
		projection, err := recs[0].Projection()
		if err != nil {
			t.Fatal(err)
		}
		if !projection.IsPlaceholder() {
			t.Fatalf("got %+v", projection)
		}
	})
}

func TestInterceptError(t *testing.T) {
	base := errors.New("rate limited")
	newScope(t, func() Completer {
		return CompleterFunc(func(ctx context.Context, req Request) (Response, error) {
			return Response{}, base
		})
	}).Call(func(
		intercept Intercept,
		writer records.Writer,
	) {
		_, err := intercept(context.Background(), Call{
			Function: "Chat",
			Explain: func() explains.Result {
				return explains.Result{
					Projection: messages.Placeholder("x"),
				}
			},
		})
		if !errors.Is(err, base) {
			t.Fatalf("got %v", err)
		}
		recs := readRecords(t, writer)
		if len(recs) != 1 || recs[0].Error != "rate limited" || len(recs[0].Response) != 0 {
			t.Fatalf("got %+v", recs)
		}
	})
}

const script = `
def ask(question):
    q = question.upper()
    prompt = "Q: %s" % q
    return chat(messages = [{"role": "user", "content": prompt}], model = "m1")

answer = ask("why?")["content"]
`

func TestChatBuiltin(t *testing.T) {
	newScope(t).Call(func(
		builtin ChatBuiltin,
		writer records.Writer,
	) {
		thread := &starlark.Thread{
			Name: "test",
		}
		SetContext(thread, context.Background())
		globals, err := starsources.ExecFile(thread, "ask.star", []byte(script), builtin.Predeclared())
		if err != nil {
			t.Fatal(err)
		}
		if globals["answer"] != starlark.String("Q: WHY?") {
			t.Fatalf("got %v", globals["answer"])
		}

		recs := readRecords(t, writer)
		if len(recs) != 1 {
			t.Fatalf("got %v", recs)
		}
		record := recs[0]
		if record.Function != "chat" || record.File != "ask.star" || record.Line != 5 {
			t.Fatalf("got %+v", record)
		}
		if record.Params["model"] != "m1" {
			t.Fatalf("got %v", record.Params)
		}
		expected := grammars.NewFormat(
			grammars.Literal{Value: "Q: {}"},
			[]grammars.Grammar{
				grammars.InferredVar{Name: "q", Value: "WHY?"},
			},
			nil,
		)
		if content := recordContent(t, record); !grammars.Equal(content, expected) {
			t.Fatalf("got %v", content)
		}
	})
}

func TestChatBuiltinMissingMessages(t *testing.T) {
	newScope(t).Call(func(
		builtin ChatBuiltin,
	) {
		thread := &starlark.Thread{
			Name: "test",
		}
		_, err := starsources.ExecFile(thread, "bad.star", []byte("chat(model = 1)\n"), builtin.Predeclared())
		if err == nil || !strings.Contains(err.Error(), "missing messages") {
			t.Fatalf("got %v", err)
		}
	})
}

func TestEchoCompleter(t *testing.T) {
	resp, err := EchoCompleter{}.Complete(context.Background(), Request{})
	if err != nil || resp.Content != "" {
		t.Fatalf("got %v %v", resp, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (EchoCompleter{}).Complete(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestInterceptRecordFields(t *testing.T) {
	newScope(t, func() Completer {
		return CompleterFunc(func(ctx context.Context, req Request) (Response, error) {
			time.Sleep(5 * time.Millisecond)
			return Response{
				Content: "ok",
				Usage: &Usage{
					PromptTokens:     3,
					CompletionTokens: 1,
					TotalTokens:      4,
				},
			}, nil
		})
	}).Call(func(
		intercept Intercept,
		writer records.Writer,
		newSpan logs.NewSpan,
	) {
		ctx, session := newSpan(context.Background(), "")
		stack := []explains.StackFrame{
			{File: "main.go", Line: 10, Function: "main.main"},
			{File: "ask.go", Line: 3, Function: "main.ask"},
		}
		_, err := intercept(ctx, Call{
			Function: "Chat",
			Stack:    stack,
			Request: Request{
				Messages: []Message{{
					Role: "user",
					Content: []any{
						map[string]any{"type": "text", "text": "look"},
						map[string]any{
							"type": "image_url",
							"image_url": map[string]any{
								"url": "data:image/png;base64,iVBORw0KGgo=",
							},
						},
					},
				}},
			},
			Explain: func() explains.Result {
				return explains.Result{
					Projection: messages.Placeholder("x"),
				}
			},
		})
		if err != nil {
			t.Fatal(err)
		}

		recs := readRecords(t, writer)
		if len(recs) != 1 {
			t.Fatalf("got %v", recs)
		}
		record := recs[0]
		if record.SessionID != string(session) {
			t.Fatalf("got %v", record.SessionID)
		}
		if record.DurationMS < 5 {
			t.Fatalf("got %v", record.DurationMS)
		}
		if diff := cmp.Diff(stack, record.StackTrace); diff != "" {
			t.Fatal(diff)
		}
		var usage Usage
		if err := json.Unmarshal(record.Usage, &usage); err != nil {
			t.Fatal(err)
		}
		if usage.TotalTokens != 4 {
			t.Fatalf("got %+v", usage)
		}
		request := string(record.Request)
		if strings.Contains(request, "base64") || !strings.Contains(request, redactedImage) {
			t.Fatalf("got %s", request)
		}
		if !strings.Contains(request, "look") {
			t.Fatalf("got %s", request)
		}
	})
}

func TestInterceptUnencodableGrammar(t *testing.T) {
	newScope(t).Call(func(
		intercept Intercept,
		writer records.Writer,
	) {
		_, err := intercept(context.Background(), Call{
			Function: "Chat",
			Request: Request{
				Messages: []Message{{Role: "user", Content: "hi"}},
			},
			Explain: func() explains.Result {
				return explains.Result{
					Projection: messages.Projection{
						Messages: []messages.Message{{
							"role":    make(chan int),
							"content": grammars.Literal{Value: "hi"},
						}},
					},
				}
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		recs := readRecords(t, writer)
		if len(recs) != 1 || recs[0].GrammarError == "" {
			t.Fatalf("got %+v", recs)
		}
		projection, err := recs[0].Projection()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(projection.Placeholder, "<grammar unavailable: ") {
			t.Fatalf("got %+v", projection)
		}
	})
}

const shapesScript = `
def ask(q):
    return chat(messages = {"role": "user", "content": "say " + q})

a = ask("hi")["content"]
parts = [
    {"type": "text", "text": "look"},
    {"type": "image_url", "image_url": {"url": "data:image/png;base64,AAAA"}},
]
b = chat(messages = [{"role": "user", "content": parts}])["content"]
`

func TestChatBuiltinPayloadShapes(t *testing.T) {
	newScope(t).Call(func(
		builtin ChatBuiltin,
		writer records.Writer,
	) {
		thread := &starlark.Thread{
			Name: "test",
		}
		globals, err := starsources.ExecFile(thread, "shapes.star", []byte(shapesScript), builtin.Predeclared())
		if err != nil {
			t.Fatal(err)
		}
		if globals["a"] != starlark.String("say hi") {
			t.Fatalf("got %v", globals["a"])
		}
		if globals["b"] != starlark.String("look") {
			t.Fatalf("got %v", globals["b"])
		}

		recs := readRecords(t, writer)
		if len(recs) != 2 {
			t.Fatalf("got %v", recs)
		}

		single := recs[0]
		projection, err := single.Projection()
		if err != nil {
			t.Fatal(err)
		}
		if !projection.Single || projection.IsPlaceholder() {
			t.Fatalf("got %+v", projection)
		}
		if _, ok := projection.Content(0); !ok {
			t.Fatalf("got %+v", projection)
		}
		if len(single.StackTrace) != 2 ||
			single.StackTrace[0].Function != "<toplevel>" ||
			single.StackTrace[1].Function != "ask" ||
			single.StackTrace[1].Line != 3 {
			t.Fatalf("got %+v", single.StackTrace)
		}
		if len(single.Usage) == 0 {
			t.Fatalf("got %+v", single)
		}

		multimodal := recs[1]
		if multimodal.Error != "" {
			t.Fatalf("got %v", multimodal.Error)
		}
		if strings.Contains(string(multimodal.Request), "AAAA") {
			t.Fatalf("got %s", multimodal.Request)
		}
	})
}

func TestToMessages(t *testing.T) {
	cases := []struct {
		value    any
		expected []Message
	}{
		{
			map[string]any{"role": "user", "content": "hi"},
			[]Message{{Role: "user", Content: "hi"}},
		},
		{
			[]any{map[string]any{"content": "a"}, "b"},
			[]Message{{Content: "a"}, {Content: "b"}},
		},
		{
			"bare",
			[]Message{{Content: "bare"}},
		},
		{
			nil,
			nil,
		},
	}
	for _, c := range cases {
		got := toMessages(c.value)
		if diff := cmp.Diff(c.expected, got); diff != "" {
			t.Fatalf("%v: %s", c.value, diff)
		}
	}
}

func TestContentText(t *testing.T) {
	got := ContentText([]any{
		map[string]any{"type": "text", "text": "a"},
		map[string]any{"type": "image_url"},
		"b",
	})
	if got != "a\nb" {
		t.Fatalf("got %q", got)
	}
	if got := ContentText(42); got != "42" {
		t.Fatalf("got %q", got)
	}
}

func TestChatBuiltinAliasesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, content := range []string{
		`aliases: ["ask", "llm"]`,
		`aliases: ["llm", "complete"]`,
	} {
		path := filepath.Join(dir, fmt.Sprintf("%d.cue", i))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	newScope(t, func() configs.Loader {
		return configs.NewLoader(paths, configs.Schema)
	}, func() DefaultParams {
		return DefaultParams{
			"model":       "default",
			"temperature": 0.5,
		}
	}).Call(func(
		aliases ChatAliases,
		builtin ChatBuiltin,
		writer records.Writer,
	) {
		if diff := cmp.Diff(ChatAliases{"ask", "llm", "complete"}, aliases); diff != "" {
			t.Fatal(diff)
		}
		predeclared := builtin.Predeclared()
		for _, name := range []string{"chat", "ask", "llm", "complete"} {
			if _, ok := predeclared[name]; !ok {
				t.Fatalf("no %s", name)
			}
		}

		src := `
q = "x".upper()
r = ask(messages = [{"role": "user", "content": "hi " + q}], model = "m2")
`
		thread := &starlark.Thread{
			Name: "test",
		}
		if _, err := starsources.ExecFile(thread, "alias.star", []byte(src), predeclared); err != nil {
			t.Fatal(err)
		}
		recs := readRecords(t, writer)
		if len(recs) != 1 {
			t.Fatalf("got %v", recs)
		}
		record := recs[0]
		if record.Function != "ask" || record.GrammarError != "" {
			t.Fatalf("got %+v", record)
		}
		if diff := cmp.Diff(map[string]any{
			"model":       "m2",
			"temperature": 0.5,
		}, record.Params); diff != "" {
			t.Fatal(diff)
		}
	})
}
