package logs

import (
	"log/slog"

	"github.com/reusee/sublingual/cmds"
	"github.com/reusee/sublingual/modes"
)

var level = new(slog.LevelVar)

func init() {
	for name, l := range map[string]slog.Level{
		"-log-debug": slog.LevelDebug,
		"-log-info":  slog.LevelInfo,
		"-log-warn":  slog.LevelWarn,
		"-log-error": slog.LevelError,
	} {
		cmds.Define(name, cmds.Func(func() {
			level.Set(l)
		}).Desc("set log level to "+l.String()))
	}
}

type Leveler = slog.Leveler

func (Module) Leveler(mode modes.Mode) Leveler {
	if mode == modes.ModeDevelopment {
		return slog.LevelDebug
	}
	return level
}
