package explains

import (
	"fmt"
	"os"
	"strings"

	"github.com/reusee/sublingual/bindings"
	"github.com/reusee/sublingual/exprs"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/messages"
	"github.com/reusee/sublingual/resolvers"
)

// Frame is the call site of an intercepted call
type Frame struct {
	File   string
	Line   int
	Func   string
	Source []byte // overrides reading File
	Locals resolvers.Locals
}

func (f Frame) ReadSource() ([]byte, error) {
	if f.Source != nil {
		return f.Source, nil
	}
	if f.File == "" {
		return nil, fmt.Errorf("%w: no file", ErrSourceUnavailable)
	}
	content, err := os.ReadFile(f.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return content, nil
}

// Unit is the lowered source around a frame
type Unit struct {
	Lines []string
	// statements of the enclosing function, within [Start, End]
	Body       []exprs.Stmt
	Start, End int
	// statements binding names visible to the enclosing function from outside
	Globals       []exprs.Stmt
	ParseFragment locators.FragmentParser
}

func SplitLines(src []byte) []string {
	return strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
}

type Frontend interface {
	Load(frame Frame) (*Unit, error)
	Syntax() locators.Syntax
}

type Result struct {
	Projection messages.Projection
	Call       *exprs.CallSite
	Err        error
}

// Explain recovers the grammar of the message argument of the call at frame.
// Failures are reported in the result, never returned or raised.
func Explain(frontend Frontend, frame Frame, target locators.Target) (ret Result) {
	defer func() {
		if p := recover(); p != nil {
			ret = Failed(fmt.Errorf("%w: %v", ErrUnsupported, p))
		}
	}()

	unit, err := frontend.Load(frame)
	if err != nil {
		return Failed(err)
	}

	env := bindings.Merge(
		bindings.Build(unit.Globals, 1, len(unit.Lines)),
		bindings.Build(unit.Body, unit.Start, unit.End),
	)

	call, err := locators.Locate(unit.Lines, frame.Line, target, frontend.Syntax(), unit.ParseFragment)
	if err != nil {
		return Failed(err)
	}

	arg, ok := call.Payload(target.Keyword, target.Position)
	if !ok {
		return Failed(fmt.Errorf("%w: no message argument in call to %s", ErrUnsupported, call.Callee))
	}

	return Result{
		Projection: messages.Project(arg, env, frame.Locals),
		Call:       &call,
	}
}

func Failed(err error) Result {
	return Result{
		Projection: messages.Placeholder("<grammar unavailable: " + err.Error() + ">"),
		Err:        err,
	}
}
