package intercepts

import (
	"context"
	"fmt"
	"maps"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/messages"
	"github.com/reusee/sublingual/starsources"
	"go.starlark.net/starlark"
)

const contextKey = "sublingual.context"

// SetContext sets the context used by builtins called on thread
func SetContext(thread *starlark.Thread, ctx context.Context) {
	thread.SetLocal(contextKey, ctx)
}

func contextOf(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(contextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// ChatBuiltin is the Starlark chat(messages=[...], **params) function
type ChatBuiltin struct {
	*starlark.Builtin
	aliases []*starlark.Builtin
}

// Predeclared returns the builtin and its aliases keyed by name
func (c ChatBuiltin) Predeclared() starlark.StringDict {
	ret := starlark.StringDict{
		c.Name(): c.Builtin,
	}
	for _, alias := range c.aliases {
		ret[alias.Name()] = alias
	}
	return ret
}

func (Module) ChatBuiltin(
	intercept Intercept,
	target ChatTarget,
	aliases ChatAliases,
	defaults DefaultParams,
) ChatBuiltin {
	call := func(
		thread *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		// aliases are located by their own name
		target := target
		target.Func = fn.Name()

		var messagesValue starlark.Value
		if target.Position < len(args) {
			messagesValue = args[target.Position]
		}
		params := maps.Clone(map[string]any(defaults))
		if params == nil {
			params = make(map[string]any)
		}
		for _, kv := range kwargs {
			key := string(kv[0].(starlark.String))
			if key == target.Keyword {
				messagesValue = kv[1]
				continue
			}
			params[key] = starsources.FromValue(kv[1])
		}
		if messagesValue == nil {
			return nil, fmt.Errorf("%s: missing %s", fn.Name(), target.Keyword)
		}

		msgs := toMessages(starsources.FromValue(messagesValue))
		if len(params) == 0 {
			params = nil
		}

		frame := starsources.FrameOf(thread, 1)
		resp, err := intercept(contextOf(thread), Call{
			Function: fn.Name(),
			Frame:    frame,
			Stack:    starsources.Stack(thread, 1),
			Request: Request{
				Messages: msgs,
				Params:   params,
			},
			Explain: func() explains.Result {
				return explains.Explain(starsources.Frontend{}, frame, locators.Target(target))
			},
		})
		if err != nil {
			return nil, err
		}

		ret := map[string]any{
			"content": resp.Content,
		}
		if resp.Usage != nil {
			ret["usage"] = map[string]any{
				"prompt_tokens":     resp.Usage.PromptTokens,
				"completion_tokens": resp.Usage.CompletionTokens,
				"total_tokens":      resp.Usage.TotalTokens,
			}
		}
		return starsources.ToValue(ret)
	}

	ret := ChatBuiltin{
		Builtin: starlark.NewBuiltin(target.Func, call),
	}
	for _, alias := range aliases {
		if alias == target.Func {
			continue
		}
		ret.aliases = append(ret.aliases, starlark.NewBuiltin(alias, call))
	}
	return ret
}

// toMessages converts a payload of any shape. A single dict is one message, other values become contents.
func toMessages(v any) []Message {
	switch v := v.(type) {
	case []any:
		ret := make([]Message, 0, len(v))
		for _, elem := range v {
			ret = append(ret, toMessage(elem))
		}
		return ret
	case nil:
		return nil
	}
	return []Message{toMessage(v)}
}

func toMessage(v any) Message {
	m, ok := v.(map[string]any)
	if !ok {
		return Message{
			Content: v,
		}
	}
	role, _ := m["role"].(string)
	return Message{
		Role:    role,
		Content: m[messages.ContentKey],
	}
}
