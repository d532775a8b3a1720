package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrAccessDenied           = errors.New("access denied")
	ErrConcurrentModification = errors.New("concurrent modification")
)
