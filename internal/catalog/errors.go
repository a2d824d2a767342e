package catalog

import (
	"errors"
	"fmt"
)

// Domain errors for the catalog package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, catalog.ErrModelNotFound) {
//	    // handle unknown model path
//	}
var (
	// ErrInvalidVariant is matched by every *ValidationError.
	ErrInvalidVariant = errors.New("catalog: invalid variant")

	// ErrModelNotFound is matched by every *NotFoundError.
	ErrModelNotFound = errors.New("catalog: model not found")

	// ErrCorruptRecord is matched by validation failures raised while
	// decoding a persisted record.
	ErrCorruptRecord = errors.New("catalog: corrupt record")

	// ErrRecordNotFound is returned when a record ID does not exist.
	ErrRecordNotFound = errors.New("catalog: record not found")

	// ErrRecordExists is returned when saving a record whose ID is already stored.
	ErrRecordExists = errors.New("catalog: record already exists")

	// ErrDeviceInactive is returned when attaching a variant to a deactivated device.
	ErrDeviceInactive = errors.New("catalog: device inactive")

	// ErrKindMismatch is matched by validation failures where a sensor
	// model is used as an actuator or the other way round.
	ErrKindMismatch = errors.New("catalog: kind mismatch")

	// ErrUnsupportedType is matched by validation failures for a type id
	// that is unknown or not supported by the chosen model.
	ErrUnsupportedType = errors.New("catalog: unsupported type")
)

// ValidationError reports a constructor argument, bound pair or setting
// that violates a variant's contract.
type ValidationError struct {
	// Field names the offending argument (e.g. "name", "integer_bounds").
	Field string

	// Reason is a human-readable description of the violation.
	Reason string

	// Persisted is true when the failure came from decoding a stored record.
	Persisted bool

	// Err optionally classifies the failure further, e.g. ErrKindMismatch.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Persisted {
		return fmt.Sprintf("catalog: corrupt record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("catalog: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is to match ErrInvalidVariant, ErrCorruptRecord for
// decode failures, and Err when set.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidVariant}
	if e.Persisted {
		errs = append(errs, ErrCorruptRecord)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NotFoundError reports a model path that is not part of the catalog.
type NotFoundError struct {
	ModelPath ModelPath
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: unknown model %q", string(e.ModelPath))
}

func (e *NotFoundError) Unwrap() error {
	return ErrModelNotFound
}

// RepositoryError wraps a storage backend failure. The catalog never
// interprets the underlying error.
type RepositoryError struct {
	// Op describes the storage operation (e.g. "inserting record").
	Op string
	// Err is the underlying driver error.
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func corrupt(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Persisted: true}
}

func repoErr(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}
