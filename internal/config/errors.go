package config

import "errors"

var (
	ErrBindFlags    = errors.New("failed to bind flags")
	ErrInvalidValue = errors.New("invalid value")
)
