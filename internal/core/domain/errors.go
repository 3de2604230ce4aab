package domain

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidDate        = errors.New("invalid date")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
