package explains

import (
	"errors"

	"github.com/reusee/sublingual/locators"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrParse             = errors.New("parse error")
	ErrCallNotFound      = locators.ErrCallNotFound
	ErrUnsupported       = errors.New("unsupported")
)
