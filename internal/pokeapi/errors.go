package pokeapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the upstream answers 404 for a resource.
	ErrNotFound = errors.New("pokeapi: resource not found")
	// ErrRateLimited is returned when the upstream answers 429.
	ErrRateLimited = errors.New("pokeapi: rate limited")
	// ErrUpstream marks every other upstream or transport failure.
	ErrUpstream = errors.New("pokeapi: upstream failure")
)

// StatusError carries an unexpected upstream HTTP status. It unwraps to ErrUpstream.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: %s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }
