package starsources

import (
	"slices"

	"github.com/reusee/sublingual/explains"
	"github.com/reusee/sublingual/resolvers"
	"go.starlark.net/starlark"
)

const sourcesKey = "sublingual.sources"

// Sources maps file names to the source the host executed
type Sources map[string][]byte

// SetSource records src as the source of filename for frames on thread
func SetSource(thread *starlark.Thread, filename string, src []byte) {
	sources, _ := thread.Local(sourcesKey).(Sources)
	if sources == nil {
		sources = make(Sources)
		thread.SetLocal(sourcesKey, sources)
	}
	sources[filename] = src
}

// FrameOf returns the frame depth levels up the call stack of thread.
// In a builtin, depth 1 is the caller of the builtin.
func FrameOf(thread *starlark.Thread, depth int) explains.Frame {
	if depth >= thread.CallStackDepth() {
		return explains.Frame{}
	}
	callFrame := thread.CallFrame(depth)
	frame := explains.Frame{
		File:   callFrame.Pos.Filename(),
		Line:   int(callFrame.Pos.Line),
		Func:   callFrame.Name,
		Locals: Locals(thread, depth),
	}
	if sources, ok := thread.Local(sourcesKey).(Sources); ok {
		frame.Source = sources[frame.File]
	}
	return frame
}

// Locals snapshots the globals and bound locals of the frame at depth
func Locals(thread *starlark.Thread, depth int) resolvers.Locals {
	ret := make(resolvers.Locals)
	debug := thread.DebugFrame(depth)
	fn, ok := debug.Callable().(*starlark.Function)
	if !ok {
		// builtins have no inspectable locals
		return ret
	}
	for name, value := range fn.Globals() {
		if _, ok := value.(starlark.Callable); ok {
			continue
		}
		ret[name] = FromValue(value)
	}
	for i := range debug.NumLocals() {
		binding, value := debug.Local(i)
		if value == nil {
			// not yet assigned
			continue
		}
		ret[binding.Name] = FromValue(value)
	}
	return ret
}

// Stack returns the frames of thread from depth outwards, outermost first. Builtins are dropped.
func Stack(thread *starlark.Thread, depth int) []explains.StackFrame {
	var ret []explains.StackFrame
	for i := depth; i < thread.CallStackDepth(); i++ {
		callFrame := thread.CallFrame(i)
		if !callFrame.Pos.IsValid() || callFrame.Pos.Line == 0 {
			continue
		}
		ret = append(ret, explains.StackFrame{
			File:     callFrame.Pos.Filename(),
			Line:     int(callFrame.Pos.Line),
			Function: callFrame.Name,
		})
	}
	slices.Reverse(ret)
	return ret
}
