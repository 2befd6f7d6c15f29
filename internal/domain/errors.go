package domain

import "errors"

var (
	ErrUnknownDoctor = errors.New("unknown doctor")
	ErrUnknownDate   = errors.New("date not in schedule")
)
