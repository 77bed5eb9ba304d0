package leadimport

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadableFile    = errors.New("file could not be read")
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file too large")
	ErrSessionTooLarge   = errors.New("file too large for an import session")

	ErrInvalidToken = errors.New("invalid import token")
	ErrTokenExpired = errors.New("import token expired")

	ErrMappingIncomplete = errors.New("required fields are not mapped")
	ErrRowsInvalid       = errors.New("rows failed validation")
	ErrImportConflict    = errors.New("import conflicts with existing data")
)

// MappingError lists required fields left unmapped or pointing at a missing column.
type MappingError struct {
	Missing []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMappingIncomplete, strings.Join(e.Missing, ", "))
}

func (e *MappingError) Unwrap() error { return ErrMappingIncomplete }

// RowError is the validation outcome of one data row. Row is 1-based.
type RowError struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"errors"`
}

// RowValidationError reports every invalid row of a rejected import.
type RowValidationError struct {
	Rows      []RowError
	TotalRows int
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("%v: %d of %d rows invalid", ErrRowsInvalid, len(e.Rows), e.TotalRows)
}

func (e *RowValidationError) Unwrap() error { return ErrRowsInvalid }
