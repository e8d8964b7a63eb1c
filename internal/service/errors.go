package service

import "errors"

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// InvalidPayloadMessage is reported for every rejected create request.
const InvalidPayloadMessage = "Invalid payload."

// ValidationError represents a bad-request condition (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a create whose name is already taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
