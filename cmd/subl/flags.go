package main

import (
	"fmt"
	"strings"

	"github.com/reusee/sublingual/cmds"
	"github.com/reusee/sublingual/intercepts"
	"github.com/reusee/sublingual/messages"
	"github.com/reusee/sublingual/records"
)

var (
	logDirFlag = cmds.Var[string]("-log-dir")
	indexFlag  = cmds.Var[string]("-index")
	noLogFlag  = cmds.Switch("-no-log")
	paramFlags = cmds.Collect[string]("-param")
)

// overrides returns the definitions that replace configured values
func overrides() (defs []any, err error) {
	if *logDirFlag != "" {
		dir := records.LogDir(*logDirFlag)
		defs = append(defs, func() records.LogDir {
			return dir
		})
	}
	if *indexFlag != "" {
		path := records.IndexPath(*indexFlag)
		defs = append(defs, func() records.IndexPath {
			return path
		})
	}
	if *noLogFlag {
		defs = append(defs, func() records.Writer {
			return records.DiscardWriter{}
		})
	}
	if len(*paramFlags) > 0 {
		params, err := parseParams(*paramFlags)
		if err != nil {
			return nil, err
		}
		defs = append(defs, func() intercepts.DefaultParams {
			return params
		})
	}
	return
}

// parseParams parses KEY=VALUE pairs. Numbers and booleans are typed.
func parseParams(pairs []string) (intercepts.DefaultParams, error) {
	ret := make(intercepts.DefaultParams, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("-param: expecting KEY=VALUE, got %q", pair)
		}
		ret[key] = messages.ParseConst(value)
	}
	return ret, nil
}
