package records

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/messages"
)

// Record is one intercepted call
type Record struct {
	RequestID uuid.UUID `json:"request_id"`
	// correlation id of the request context the call was made in
	SessionID    string                `json:"session_id,omitempty"`
	Time         time.Time             `json:"time"`
	DurationMS   int64                 `json:"duration_ms"`
	Function     string                `json:"function"`
	File         string                `json:"file"`
	Line         int                   `json:"line"`
	StackTrace   []explains.StackFrame `json:"stack_trace,omitempty"`
	Params       map[string]any        `json:"params,omitempty"`
	Request      json.RawMessage       `json:"request"`
	Response     json.RawMessage       `json:"response,omitempty"`
	Usage        json.RawMessage       `json:"usage,omitempty"`
	Error        string                `json:"error,omitempty"`
	Grammar      json.RawMessage       `json:"grammar"`
	GrammarError string                `json:"grammar_error,omitempty"`
}

func (r Record) Projection() (ret messages.Projection, err error) {
	if err := json.Unmarshal(r.Grammar, &ret); err != nil {
		return ret, err
	}
	return ret, nil
}
