package types

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match these with errors.Is.
var (
	ErrDuplicateIdentity = errors.New("duplicate record identity")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrImmutableField    = errors.New("field is immutable")
	ErrPersistence       = errors.New("persistence failure")
	ErrUnknownKind       = errors.New("unknown kind")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInvalidName       = errors.New("invalid attribute name")
	ErrUnknownAttribute  = errors.New("attribute not declared by kind")
	ErrInvalidValueType  = errors.New("invalid value type")
)

// DuplicateIdentityError reports an Add whose composite key is already held.
type DuplicateIdentityError struct {
	Key string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("record %q already exists", e.Key)
}

func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}

// MalformedRecordError reports a flat map that cannot be turned back into a
// record. Key is the composite key of the file entry when known.
type MalformedRecordError struct {
	Key    string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	msg := "malformed record"
	if e.Key != "" {
		msg = fmt.Sprintf("malformed record %q", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// ImmutableFieldError reports a write to an identity or timestamp field.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %q cannot be modified", e.Field)
}

func (e *ImmutableFieldError) Is(target error) bool {
	return target == ErrImmutableField
}

// PersistenceError wraps an I/O failure while reading or writing the data file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// malformed is a shorthand for building a MalformedRecordError without a key.
func malformed(reason string, err error) error {
	return &MalformedRecordError{Reason: reason, Err: err}
}
