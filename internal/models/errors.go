package models

import "errors"

// Classified failures returned by the entity accessors. Handlers match these
// with errors.Is and translate them into a flash message plus redirect;
// anything unclassified is treated as an internal error.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("record already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("record was modified concurrently")
)
