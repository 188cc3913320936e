package model

import (
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError names the feed field that failed decoding or validation.
type MalformedResponseError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func NewMalformedResponseError(field, reason string, err error) *MalformedResponseError {
	return &MalformedResponseError{Field: field, Reason: reason, Err: err}
}
