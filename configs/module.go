package configs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

//go:embed schema.cue
var Schema string

var fileNames = []string{
	"subl.cue",
	".subl.cue",
}

// SearchPaths returns existing config files in the working directory, the user config directory and /etc, in precedence order
func SearchPaths() (paths []string) {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")
	for _, dir := range dirs {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (Module) Loader(
	logger logs.Logger,
) Loader {
	paths := SearchPaths()
	if len(paths) > 0 {
		logger.Info("config file", "paths", paths)
	}
	return NewLoader(paths, Schema)
}
