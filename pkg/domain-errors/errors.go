// Package domainerrors carries coded errors from services to transport layers.
//
// Services return *Error values built with New or Wrap; handlers translate the
// Code into a status through pkg/platform/httputil. Stores should not use this
// package directly: they return pkg/platform/sentinel errors and let services
// decide what the fact means for the caller.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers. It is also the public "error" field of
// HTTP error envelopes, so values must stay stable.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Kudo issuance and query codes.
const (
	CodeMissingIdentity            Code = "missing_identity"
	CodeUnknownUser                Code = "unknown_user"
	CodeUnknownSender              Code = "unknown_sender"
	CodeUnknownReceiver            Code = "unknown_receiver"
	CodeUnknownOrganization        Code = "unknown_organization"
	CodeSelfKudoForbidden          Code = "self_kudo_forbidden"
	CodeCrossOrganizationForbidden Code = "cross_organization_forbidden"
	CodeQuotaExhausted             Code = "quota_exhausted"
	CodeInvalidMessage             Code = "invalid_message"
)

// Error is a coded error with a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any coded error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is reports whether the outermost coded error in err's chain has the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when err
// carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message of the outermost coded error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
