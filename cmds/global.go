package cmds

import (
	"fmt"
	"os"
)

var GlobalExecutor = NewExecutor()

func init() {
	GlobalExecutor.Define("-h", Func(func() {
		GlobalExecutor.PrintUsage()
		os.Exit(0)
	}).
		Desc("print this usage").
		Alias("help", "-help", "--help"))
}

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

func PrintUsage() {
	GlobalExecutor.PrintUsage()
}

// Execute runs args with the global executor and exits on error
func Execute(args []string) {
	if err := GlobalExecutor.Execute(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
