package service

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/domain/order"
)

// envelopeKey is the field an SNS notification delivered through SQS
// wraps its payload in.
const envelopeKey = "Message"

// decodeBody parses a message body and unwraps one level of notification
// envelope. The returned value is whatever the JSON held; callers decide
// whether it is an order. Invalid JSON yields a *order.DecodeError; a
// non-string Message yields a *order.EnvelopeError.
func decodeBody(body string) (any, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, &order.DecodeError{Stage: order.StageBody, Err: err}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	wrapped, ok := obj[envelopeKey]
	if !ok {
		return obj, nil
	}

	inner, ok := wrapped.(string)
	if !ok {
		return nil, &order.EnvelopeError{Field: envelopeKey, Kind: order.JSONKind(wrapped)}
	}
	v, err = decodeJSON(inner)
	if err != nil {
		return nil, &order.DecodeError{Stage: order.StageEnvelope, Err: err}
	}
	return v, nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, err
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}
