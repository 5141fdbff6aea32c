package main

import (
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/cmds"
	"github.com/reusee/sublingual/modes"
)

// action is set by the sub command on the command line
var action any

func init() {
	cmds.Define("resolve", cmds.Func(func(file string, line int, fn *string) {
		action = resolveAction(file, line, *fn)
	}).
		Desc("print the grammar of the call to FUNC near FILE:LINE").
		Args("FILE LINE [FUNC]"))

	cmds.Define("run", cmds.Func(func(script string) {
		action = runAction(script)
	}).
		Desc("run a starlark script with an echoing chat builtin, - for stdin").
		Args("SCRIPT"))

	cmds.Define("repl", cmds.Func(func() {
		action = replAction()
	}).
		Desc("start a starlark repl with an echoing chat builtin"))

	cmds.Define("index", cmds.Func(func(logFile string) {
		action = indexAction(logFile)
	}).
		Desc("import a log file into the index").
		Args("LOGFILE"))

	cmds.Define("recent", cmds.Func(func(n *int) {
		action = recentAction(*n)
	}).
		Desc("list recently indexed calls").
		Args("[N]"))

	cmds.Define("replay", cmds.Func(func(id string, messageIndex int, final string) {
		action = replayAction(id, messageIndex, final)
	}).
		Desc("extract variable values of STRING against an indexed grammar").
		Args("ID MSG_INDEX STRING"))
}

func main() {
	cmds.Execute(os.Args[1:])
	if action == nil {
		cmds.PrintUsage()
		os.Exit(2)
	}

	defs, err := overrides()
	ce(err)
	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Fork(defs...).Call(action)
}

func ce(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
