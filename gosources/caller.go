package gosources

import (
	"runtime"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/resolvers"
)

// Caller returns the frame of the caller skip levels above the function calling Caller
func Caller(skip int, locals resolvers.Locals) explains.Frame {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return explains.Frame{
			Locals: locals,
		}
	}
	frame := explains.Frame{
		File:   file,
		Line:   line,
		Locals: locals,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		frame.Func = fn.Name()
	}
	return frame
}

// Explain explains the call to target made by the caller skip levels above
func Explain(target locators.Target, skip int, locals resolvers.Locals) explains.Result {
	return explains.Explain(Frontend{}, Caller(skip+1, locals), target)
}
