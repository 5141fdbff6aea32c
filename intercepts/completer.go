package intercepts

import (
	"context"
	"fmt"
	"strings"
)

type Message struct {
	Role string `json:"role"`
	// a string, or a list of content parts
	Content any `json:"content"`
}

type Request struct {
	Messages []Message      `json:"messages"`
	Params   map[string]any `json:"params,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Completer performs the real model call
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

type CompleterFunc func(ctx context.Context, req Request) (Response, error)

var _ Completer = CompleterFunc(nil)

func (c CompleterFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return c(ctx, req)
}

// EchoCompleter responds with the text of the last message, counting words as tokens
type EchoCompleter struct{}

var _ Completer = EchoCompleter{}

func (EchoCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if len(req.Messages) == 0 {
		return Response{}, nil
	}
	prompt := 0
	for _, m := range req.Messages {
		prompt += len(strings.Fields(ContentText(m.Content)))
	}
	content := ContentText(req.Messages[len(req.Messages)-1].Content)
	completion := len(strings.Fields(content))
	return Response{
		Content: content,
		Usage: &Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

// ContentText returns the text of a message content: the string itself, or the text parts joined
func ContentText(content any) string {
	switch content := content.(type) {
	case nil:
		return ""
	case string:
		return content
	case []any:
		var parts []string
		for _, part := range content {
			switch part := part.(type) {
			case string:
				parts = append(parts, part)
			case map[string]any:
				if text, ok := part["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return fmt.Sprint(content)
}
