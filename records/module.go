package records

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/configs"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/vars"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}

type LogDir string

const defaultLogDir = "subl_logs"

func (Module) LogDir(
	loader configs.Loader,
	t *testing.T,
	logger logs.Logger,
) LogDir {
	if t != nil {
		return LogDir(t.TempDir())
	}
	dir, err := configs.First[string](loader, "log_dir")
	if err != nil {
		logger.Warn("load log_dir", "error", err)
	}
	return LogDir(vars.FirstNonZero(dir, defaultLogDir))
}

type IndexPath string

func (Module) IndexPath(
	loader configs.Loader,
	dir LogDir,
	logger logs.Logger,
) IndexPath {
	path, err := configs.First[string](loader, "index_path")
	if err != nil {
		logger.Warn("load index_path", "error", err)
	}
	return IndexPath(vars.FirstNonZero(path, filepath.Join(string(dir), "index.db")))
}

func (Module) Writer(
	dir LogDir,
	logger logs.Logger,
) Writer {
	w, err := NewFileWriter(string(dir), time.Now())
	if err != nil {
		logger.Error("open record log", "dir", dir, "error", err)
		return failedWriter{
			err: err,
		}
	}
	return w
}
