package cmds

import (
	"fmt"
	"reflect"
)

// Command is either a function consuming the following arguments, a set of sub commands, or both
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	ArgsHint    string
	Aliases     []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

// Args sets the argument hint shown in usage
func (c *Command) Args(hint string) *Command {
	c.ArgsHint = hint
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

var (
	errorType   = reflect.TypeFor[error]()
	stringsType = reflect.TypeFor[[]string]()
)

func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}

	fnType := fnValue.Type()
	if fnType.NumOut() >= 2 {
		panic(fmt.Errorf("must return 0 or 1 value"))
	}
	if fnType.NumOut() == 1 && fnType.Out(0) != errorType {
		panic(fmt.Errorf("must return error"))
	}
	for i := 0; i < fnType.NumIn()-1; i++ {
		if fnType.In(i) == stringsType {
			panic(fmt.Errorf("[]string must be the last parameter"))
		}
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
