package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/sublingual/intercepts"
)

type Module struct {
	dscope.Module
	Intercepts intercepts.Module
}
