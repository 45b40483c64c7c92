package order

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	FieldOrderID    = "orderId"
	FieldTimestamp  = "timestamp"
	FieldError      = "error"
	FieldRawMessage = "rawMessage"
)

const (
	// ErrorIDPrefix marks the orderId of records synthesized from undecodable messages.
	ErrorIDPrefix     = "ERROR-"
	InvalidJSONReason = "Invalid JSON format"

	// TimestampLayout is ISO-8601 in UTC with microsecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Record is a semi-structured order. Only orderId and timestamp are known
// to the handler; every other key is carried through to storage untouched.
// Numbers are held as json.Number.
type Record map[string]any

// NewErrorRecord builds the placeholder persisted in place of a message
// whose body could not be decoded.
func NewErrorRecord(raw string, now time.Time) Record {
	return Record{
		FieldOrderID:    ErrorIDPrefix + FormatTimestamp(now),
		FieldError:      InvalidJSONReason,
		FieldRawMessage: raw,
	}
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FromValue converts a decoded JSON value into a Record. Anything other
// than a JSON object has no orderId and is rejected.
func FromValue(v any) (Record, error) {
	switch m := v.(type) {
	case map[string]any:
		return Record(m), nil
	case Record:
		return m, nil
	}
	return nil, &MissingFieldError{Field: FieldOrderID, Kind: JSONKind(v)}
}

// Validate checks that every required field is present. Values are not
// inspected: a null or numeric orderId passes.
func (r Record) Validate() error {
	if _, ok := r[FieldOrderID]; !ok {
		return &MissingFieldError{Field: FieldOrderID}
	}
	return nil
}

// EnsureTimestamp sets timestamp when the key is absent and reports
// whether it did so.
func (r Record) EnsureTimestamp(now time.Time) bool {
	if _, ok := r[FieldTimestamp]; ok {
		return false
	}
	r[FieldTimestamp] = FormatTimestamp(now)
	return true
}

// OrderID renders orderId as a string, whatever JSON type it was sent as.
func (r Record) OrderID() (string, bool) {
	v, ok := r[FieldOrderID]
	if !ok {
		return "", false
	}
	switch id := v.(type) {
	case string:
		return id, true
	case json.Number:
		return id.String(), true
	case nil:
		return "null", true
	default:
		return fmt.Sprint(id), true
	}
}

// PutAck is the store acknowledgment for a single write.
type PutAck struct {
	Table            string  `json:"table"`
	RequestID        string  `json:"requestId,omitempty"`
	HTTPStatusCode   int     `json:"httpStatusCode,omitempty"`
	Attempts         int     `json:"attempts,omitempty"`
	ConsumedCapacity float64 `json:"consumedCapacity"`
}

// JSONKind names the JSON type of a decoded value.
func JSONKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
