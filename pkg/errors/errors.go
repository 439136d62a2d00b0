// Package errors provides custom error types for the voidmap system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the voidmap system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable indicates that the persistence gateway cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrParseFailure indicates that a source file could not be parsed
	ErrParseFailure = errors.New("parse failure")

	// ErrNameCollision indicates a writeback name collides with existing content
	ErrNameCollision = errors.New("name collision")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrReadOnly indicates an attempt to modify a read-only store
	ErrReadOnly = errors.New("read only")
)

// ParseError represents a failure to read or understand a source file.
// It aborts the current operation; nothing is committed when it is returned.
type ParseError struct {
	Format    string // "ifc", "xlsx", "yaml", etc.
	File      string
	Line      int
	Processed int // elements processed before the failure, for retry reporting
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s file %s at line %d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// StorageError represents a persistence gateway failure. A StorageError
// during a batch commit means the whole batch was rolled back.
type StorageError struct {
	Operation string // "load", "save", "purge", "snapshot"
	Table     string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage error during %s of %s: %s", e.Operation, e.Table, e.Message)
	}
	return fmt.Sprintf("storage error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError creates a new StorageError
func NewStorageError(operation, table string, err error) *StorageError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &StorageError{
		Operation: operation,
		Table:     table,
		Message:   message,
		Err:       err,
	}
}

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// CollisionError reports that a caller-chosen writeback name collides with
// an existing name of different meaning in the target file. It is surfaced
// as a warning before anything is written.
type CollisionError struct {
	Name     string // the colliding property set or parameter name
	File     string
	Existing string // description of the existing entity it collides with
}

// Error implements the error interface
func (e *CollisionError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("name %q collides with existing %s in %s", e.Name, e.Existing, e.File)
	}
	return fmt.Sprintf("name %q collides with existing %s", e.Name, e.Existing)
}

// Is implements errors.Is support
func (e *CollisionError) Is(target error) bool {
	return target == ErrNameCollision
}

// NewCollisionError creates a new CollisionError
func NewCollisionError(name, file, existing string) *CollisionError {
	return &CollisionError{
		Name:     name,
		File:     file,
		Existing: existing,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsParseFailure checks if an error is a parse failure
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrParseFailure)
}

// IsStorageUnavailable checks if an error is a storage failure
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsNameCollision checks if an error is a writeback name collision
func IsNameCollision(err error) bool {
	return errors.Is(err, ErrNameCollision)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapStorage wraps an error as a StorageError
func WrapStorage(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return NewStorageError(operation, table, err)
}
