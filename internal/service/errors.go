package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrUserExists         = errors.New("user already exists")
	// ErrImportAlreadyDone guards the one-time CSV import.
	ErrImportAlreadyDone = errors.New("patient data appears to be imported already")
)

// ValidationError is a client input problem; handlers answer 400 with Message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func missingField(field string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("Missing required field: %s", field)}
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("Invalid value for %s: %s", field, reason)}
}
