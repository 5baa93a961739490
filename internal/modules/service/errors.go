package service

import "errors"

// Service layer errors. Handlers map these to HTTP statuses; anything not
// listed here is treated as an internal failure.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeExists   = errors.New("employee id already registered")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")

	// ErrNumberConflict: concurrent creations raced on the same generated
	// number and the bounded retry gave up. The caller may retry the whole
	// creation.
	ErrNumberConflict = errors.New("project number conflict")

	// ErrSequenceExhausted: the 3-digit sequence for a year+category is used
	// up. Not retryable.
	ErrSequenceExhausted = errors.New("sequence exhausted for year and category")
)
