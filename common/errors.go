package common

import "errors"

var (
	ErrNoServer = errors.New("no server exists")
)
