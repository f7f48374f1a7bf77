package excel

import "errors"

var (
	// ErrMissingFilePath is returned when no workbook path is configured.
	ErrMissingFilePath = errors.New("excel: file path is required")

	// ErrUnknownColumn is returned when an operation names a column the sheet lacks.
	ErrUnknownColumn = errors.New("excel: unknown column")

	// ErrNoKeys is returned for an update or delete without key columns.
	ErrNoKeys = errors.New("excel: operation has no key columns")
)
