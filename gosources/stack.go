package gosources

import (
	"runtime"
	"slices"
	"strings"

	"github.com/reusee/sublingual/explains"
)

const maxStackDepth = 64

// Stack returns the project frames above the caller skip levels up, outermost first.
// Frames of the runtime, the standard library and the module cache are dropped.
func Stack(skip int) []explains.StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	goroot := runtime.GOROOT()
	var ret []explains.StackFrame
	for {
		frame, more := frames.Next()
		if projectFile(frame.File, goroot) {
			ret = append(ret, explains.StackFrame{
				File:     frame.File,
				Line:     frame.Line,
				Function: frame.Function,
			})
		}
		if !more {
			break
		}
	}
	slices.Reverse(ret)
	return ret
}

func projectFile(file string, goroot string) bool {
	switch {
	case file == "":
		return false
	case goroot != "" && strings.HasPrefix(file, goroot):
		return false
	case strings.Contains(file, "/pkg/mod/"):
		return false
	}
	return true
}
