package intercepts

import (
	"context"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/gosources"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/resolvers"
)

// Client is the intercepted chat entry point for Go hosts
type Client struct {
	intercept Intercept
}

func (Module) Client(
	intercept Intercept,
) *Client {
	return &Client{
		intercept: intercept,
	}
}

// messages is the second argument of Chat
var chatTarget = locators.Target{
	Func:     "Chat",
	Position: 1,
}

// Chat sends messages. locals are the values of the caller's variables that the prompt was built from.
func (c *Client) Chat(ctx context.Context, messages []Message, locals resolvers.Locals) (Response, error) {
	frame := gosources.Caller(1, locals)
	return c.intercept(ctx, Call{
		Function: "Chat",
		Frame:    frame,
		Stack:    gosources.Stack(1),
		Request: Request{
			Messages: messages,
		},
		Explain: func() explains.Result {
			return explains.Explain(gosources.Frontend{}, frame, chatTarget)
		},
	})
}
