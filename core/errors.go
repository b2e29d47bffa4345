package core

import (
	"errors"
)

var (
	ErrEmptyScene      = errors.New("scene has no exportable nodes")
	ErrUnknownResource = errors.New("unknown resource type")
)
