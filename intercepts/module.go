package intercepts

import (
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/configs"
	"github.com/reusee/sublingual/locators"
	"github.com/reusee/sublingual/logs"
	"github.com/reusee/sublingual/records"
)

type Module struct {
	dscope.Module
	Records records.Module
	Configs configs.Module
	Logs    logs.Module
}

func (Module) Completer() Completer {
	return EchoCompleter{}
}

// ChatTarget locates the message argument of the Starlark chat builtin
type ChatTarget locators.Target

var defaultChatTarget = ChatTarget{
	Func:    "chat",
	Keyword: "messages",
}

type targetConfig struct {
	Func     string `json:"func"`
	Keyword  string `json:"keyword"`
	Position int    `json:"position"`
}

func (Module) ChatTarget(
	loader configs.Loader,
	logger logs.Logger,
) ChatTarget {
	ret := defaultChatTarget
	override, err := configs.First[targetConfig](loader, "target")
	if err != nil {
		logger.Warn("load target", "error", err)
		return ret
	}
	if override.Func != "" {
		ret.Func = override.Func
	}
	if override.Keyword != "" {
		ret.Keyword = override.Keyword
	}
	ret.Position = override.Position
	return ret
}

// ChatAliases are extra names of the chat builtin, gathered from every config file
type ChatAliases []string

func (Module) ChatAliases(
	loader configs.Loader,
	logger logs.Logger,
) (ret ChatAliases) {
	for aliases, err := range configs.All[[]string](loader, "aliases") {
		if err != nil {
			logger.Warn("load aliases", "error", err)
			return
		}
		for _, alias := range aliases {
			if !slices.Contains(ret, alias) {
				ret = append(ret, alias)
			}
		}
	}
	return
}

// DefaultParams are sent with every chat call unless the call sets them
type DefaultParams map[string]any

func (Module) DefaultParams() DefaultParams {
	return nil
}
