package starsources

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// ExecFile runs src as filename on thread, recording src for frames
func ExecFile(thread *starlark.Thread, filename string, src []byte, predeclared starlark.StringDict) (starlark.StringDict, error) {
	SetSource(thread, filename, src)
	return starlark.ExecFileOptions(fileOptions, thread, filename, src, predeclared)
}

// FileOptions returns the dialect scripts are parsed with
func FileOptions() *syntax.FileOptions {
	return fileOptions
}
