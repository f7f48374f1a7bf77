package domain

import "errors"

// Domain errors for Contact validation
var (
	// ErrEmptyContactName indicates an attempt to create or rename a contact with an empty name.
	ErrEmptyContactName = errors.New("contact name cannot be empty")

	// ErrContactNameTooLong indicates the contact name exceeds maximum length.
	ErrContactNameTooLong = errors.New("contact name exceeds maximum length of 255 characters")

	// ErrInvalidContactID indicates a non-positive contact id.
	ErrInvalidContactID = errors.New("contact id must be positive")

	// ErrContactNotFound indicates that no contact with the given id is loaded.
	ErrContactNotFound = errors.New("contact not found")
)
