package order

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("order not found")

type DecodeStage string

const (
	StageBody     DecodeStage = "body"
	StageEnvelope DecodeStage = "envelope"
)

// DecodeError reports a message body, or the Message field of a
// notification envelope, that is not valid JSON.
type DecodeError struct {
	Stage DecodeStage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EnvelopeError reports a notification envelope whose Message field is not
// a string. Unlike a DecodeError it is not replaced by an error record.
type EnvelopeError struct {
	Field string
	Kind  string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("envelope field '%s' must be a JSON string, got %s", e.Field, e.Kind)
}

type MissingFieldError struct {
	Field string
	// Kind is the JSON type of the payload when it was not an object.
	Kind string
}

func (e *MissingFieldError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("required field '%s' missing in order data (payload is a JSON %s)", e.Field, e.Kind)
	}
	return fmt.Sprintf("required field '%s' missing in order data", e.Field)
}

type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s on table %q: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
