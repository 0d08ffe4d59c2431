// Package apperr defines the error kinds shared by the stores and the HTTP layer.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal covers unexpected failures (store errors, signing errors).
	KindInternal Kind = iota
	// KindValidation means client input failed declared rules.
	KindValidation
	// KindAuth means the request carried no usable credential.
	KindAuth
	// KindForbidden means the caller is authenticated but may not touch the resource.
	KindForbidden
	// KindNotFound means a domain lookup missed.
	KindNotFound
	// KindInvalidIdentifier means an identifier is not in the store's id format.
	KindInvalidIdentifier
	// KindConflict means the request contradicts current state (already liked, etc).
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindAuth:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidIdentifier:
		return "INVALID_IDENTIFIER"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// FieldError is a single failed rule.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
	Value    any    `json:"value,omitempty"`
}

// Error is a classified application error.
type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Msg)
		}
		msg = strings.Join(parts, "; ")
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a validation error from one or more field errors.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// Auth builds an authentication error.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Msg: msg}
}

// Forbidden builds an authorization error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// NotFound builds a lookup-miss error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// InvalidIdentifier builds an error for a syntactically invalid id.
func InvalidIdentifier(msg string) *Error {
	return &Error{Kind: KindInvalidIdentifier, Msg: msg}
}

// Conflict builds a state-conflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Validator accumulates field errors in rule order.
type Validator struct {
	fields []FieldError
}

// Required records msg when value is blank.
func (v *Validator) Required(param, value, msg string) {
	if strings.TrimSpace(value) == "" {
		v.Add(param, value, msg)
	}
}

// Check records msg when ok is false.
func (v *Validator) Check(ok bool, param string, value any, msg string) {
	if !ok {
		v.Add(param, value, msg)
	}
}

// Add records a field error unconditionally.
func (v *Validator) Add(param string, value any, msg string) {
	v.fields = append(v.fields, FieldError{Msg: msg, Param: param, Location: "body", Value: value})
}

// Err returns the accumulated validation error, or nil.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return Validation(v.fields...)
}
