package model

import "errors"

// Error kinds surfaced by the folder and share layers. Callers match
// them with errors.Is; call sites wrap them with context via fmt.Errorf.
var (
	// ErrNotFound means an entity id did not resolve to a row.
	ErrNotFound = errors.New("entity not found")

	// ErrAmbiguousResult means the store returned more than one row
	// where exactly one was expected. This is a data-integrity error.
	ErrAmbiguousResult = errors.New("more than one entity matched")

	// ErrUnsupportedOperation means the request was semantically
	// invalid: a cycle-forming move, a self-share, an unknown share
	// participant type, or a duplicate mount.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrUnauthorizedAccess means the caller lacks rights on the
	// target entity.
	ErrUnauthorizedAccess = errors.New("unauthorized access")

	// ErrUserLimitExceeded means an import would push a user past the
	// configured bookmark quota.
	ErrUserLimitExceeded = errors.New("user bookmark limit exceeded")

	// ErrParse means an imported bookmark file could not be parsed.
	ErrParse = errors.New("could not parse bookmark file")
)
