package models

import "errors"

// Sentinel errors shared by repositories and the core services. Handlers map
// them to HTTP statuses with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrExpired         = errors.New("content expired")
)
