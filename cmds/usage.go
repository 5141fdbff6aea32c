package cmds

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stdout)
}

func (p *Executor) WriteUsage(w io.Writer) {
	writeCommands(w, p.commands, 0)
}

func writeCommands(w io.Writer, commands map[string]*Command, depth int) {
	// aliases share the entry of their command
	seen := make(map[*Command]bool)
	var names []string
	for name, command := range commands {
		if command == nil || slices.Contains(command.Aliases, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	indent := strings.Repeat("  ", depth)
	for _, name := range names {
		command := commands[name]
		if seen[command] {
			continue
		}
		seen[command] = true

		head := name
		if len(command.Aliases) > 0 {
			head += ", " + strings.Join(command.Aliases, ", ")
		}
		if command.ArgsHint != "" {
			head += " " + command.ArgsHint
		}
		if command.Description != "" {
			fmt.Fprintf(w, "%s%s\t%s\n", indent, head, command.Description)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, head)
		}
		if len(command.Subs) > 0 {
			writeCommands(w, command.Subs, depth+1)
		}
	}
}
