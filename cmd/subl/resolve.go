package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/gosources"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/starsources"
)

// frontendFor picks the front-end by file extension
func frontendFor(file string) (explains.Frontend, locators.Target) {
	if strings.HasSuffix(file, ".go") {
		return gosources.Frontend{}, locators.Target{
			Func:     "Chat",
			Position: 1,
		}
	}
	return starsources.Frontend{}, locators.Target{
		Func:    "chat",
		Keyword: "messages",
	}
}

func resolveAction(file string, line int, fn string) any {
	return func(
		logger logs.Logger,
	) {
		frontend, target := frontendFor(file)
		if fn != "" {
			target.Func = fn
		}
		result := explains.Explain(frontend, explains.Frame{
			File: file,
			Line: line,
		}, target)
		if result.Err != nil {
			logger.Warn("grammar unavailable", "file", file, "line", line, "error", result.Err)
		} else {
			logger.Debug("resolved", "file", file, "line", line, "callee", result.Call.Callee)
		}
		bs, err := json.MarshalIndent(result.Projection, "", "  ")
		ce(err)
		_, err = fmt.Fprintf(os.Stdout, "%s\n", bs)
		ce(err)
	}
}
