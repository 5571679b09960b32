package role

import "errors"

var (
	// ErrUnknownRole is returned by Parse for a string outside the hierarchy.
	ErrUnknownRole = errors.New("role.unknown")
)
