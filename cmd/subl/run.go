package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/reusee/sublingual/intercepts"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/records"
	"github.com/reusee/sublingual/starsources"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"golang.org/x/term"
)

// readScript reads path, or stdin when path is -
func readScript(path string) ([]byte, error) {
	if path != "-" {
		return os.ReadFile(path)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("no script on stdin")
	}
	return io.ReadAll(os.Stdin)
}

func runAction(script string) any {
	return func(
		builtin intercepts.ChatBuiltin,
		writer records.Writer,
		logger logs.Logger,
		newSpan logs.NewSpan,
	) {
		src, err := readScript(script)
		ce(err)

		ctx, _ := newSpan(context.Background(), "")
		thread := &starlark.Thread{
			Name: script,
			Print: func(_ *starlark.Thread, msg string) {
				os.Stdout.WriteString(msg + "\n")
			},
		}
		intercepts.SetContext(thread, ctx)

		_, err = starsources.ExecFile(thread, script, src, builtin.Predeclared())
		if evalErr, ok := err.(*starlark.EvalError); ok {
			logger.ErrorContext(ctx, "script failed", "backtrace", evalErr.Backtrace())
		}
		ce(logs.WrapSpan(ctx, err))

		if w, ok := writer.(*records.FileWriter); ok {
			logger.InfoContext(ctx, "calls logged", "path", w.Path())
		}
	}
}

func replAction() any {
	return func(
		builtin intercepts.ChatBuiltin,
		newSpan logs.NewSpan,
	) {
		ctx, _ := newSpan(context.Background(), "")
		thread := &starlark.Thread{
			Name: "repl",
		}
		intercepts.SetContext(thread, ctx)
		// typed lines have no source file, so their grammars degrade to a placeholder
		repl.REPLOptions(starsources.FileOptions(), thread, builtin.Predeclared())
	}
}
