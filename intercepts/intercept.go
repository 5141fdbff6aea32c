package intercepts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/records"
)

// Call is one intercepted model call
type Call struct {
	Function string
	Frame    explains.Frame
	// host frames, outermost first
	Stack   []explains.StackFrame
	Request Request
	// evaluated once, before the real call
	Explain func() explains.Result
}

// Intercept explains the grammar of the call, performs it and logs both.
// The response and error of the real call are returned untouched.
type Intercept func(ctx context.Context, call Call) (Response, error)

func (Module) Intercept(
	logger logs.Logger,
	writer records.Writer,
	completer Completer,
	newSpan logs.NewSpan,
) Intercept {
	return func(ctx context.Context, call Call) (Response, error) {
		session := logs.SpanOf(ctx)
		ctx, _ = newSpan(ctx, "")

		result := explain(call.Explain)
		if result.Err != nil {
			logger.DebugContext(ctx, "grammar unavailable",
				"function", call.Function,
				"file", call.Frame.File,
				"line", call.Frame.Line,
				"error", result.Err,
			)
		}

		start := time.Now()
		resp, err := completer.Complete(ctx, call.Request)
		duration := time.Since(start)

		record := records.Record{
			RequestID:  uuid.New(),
			SessionID:  string(session),
			Time:       start,
			DurationMS: duration.Milliseconds(),
			Function:   call.Function,
			File:       call.Frame.File,
			Line:       call.Frame.Line,
			StackTrace: call.Stack,
			Params:     call.Request.Params,
		}
		if result.Err != nil {
			record.GrammarError = result.Err.Error()
		}
		if err != nil {
			record.Error = err.Error()
		}
		var merr error
		if record.Request, merr = marshalRedacted(call.Request.Messages); merr != nil {
			logger.WarnContext(ctx, "marshal request", "error", merr)
		}
		if err == nil {
			if record.Response, merr = marshalRedacted(resp); merr != nil {
				logger.WarnContext(ctx, "marshal response", "error", merr)
			}
			if resp.Usage != nil {
				if record.Usage, merr = json.Marshal(resp.Usage); merr != nil {
					logger.WarnContext(ctx, "marshal usage", "error", merr)
				}
			}
		}
		if record.Grammar, merr = json.Marshal(result.Projection); merr != nil {
			logger.WarnContext(ctx, "marshal grammar", "error", merr)
			record.GrammarError = merr.Error()
			record.Grammar, _ = json.Marshal(explains.Failed(merr).Projection)
		}
		if werr := writer.Write(record); werr != nil {
			logger.WarnContext(ctx, "write record", "error", logs.WrapSpan(ctx, werr))
		}

		return resp, err
	}
}

func explain(fn func() explains.Result) (ret explains.Result) {
	defer func() {
		if p := recover(); p != nil {
			ret = explains.Failed(fmt.Errorf("%w: %v", explains.ErrUnsupported, p))
		}
	}()
	if fn == nil {
		return explains.Failed(fmt.Errorf("%w: no explanation", explains.ErrUnsupported))
	}
	return fn()
}
