// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the voting core's error taxonomy and how each kind
// is rendered into the message a store shows to the viewer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoConnectivity is a transport-level failure (status 0).
	ErrNoConnectivity = errors.New("no connectivity")
	// ErrClosed is returned when a result arrives after teardown.
	ErrClosed = errors.New("feature torn down")
)

// Fallback messages shown to the viewer.
const (
	MsgGeneric           = "Something went wrong. Please try again!"
	MsgNoConnectivity    = "No internet connection."
	MsgRequiresClassSize = "Set the class size first!"
)

// ValidationError is a client-side rejection. It never reaches the remote API.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// EligibilityViolation is an action the eligibility engine would have refused.
type EligibilityViolation struct {
	Reason string
}

func (e *EligibilityViolation) Error() string {
	return "not allowed: " + e.Reason
}

// RemoteFailure is any call the remote API rejected.
type RemoteFailure struct {
	Status            int
	Message           string
	RequiresClassSize bool
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("remote failure (%d): %s", e.Status, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Ineligible(reason string) error {
	return &EligibilityViolation{Reason: reason}
}

// FromValidator converts go-playground validation errors into a
// ValidationError naming the first failing field.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q rule", fe.Tag()),
		}
	}
	return &ValidationError{Message: err.Error()}
}

// Message renders err as the human-readable string stores keep in their
// error field.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var rf *RemoteFailure
	var ve *ValidationError
	var ev *EligibilityViolation
	switch {
	case errors.Is(err, ErrNoConnectivity):
		return MsgNoConnectivity
	case errors.As(err, &rf):
		if rf.Message != "" {
			return rf.Message
		}
		if rf.Status == http.StatusUnprocessableEntity && rf.RequiresClassSize {
			return MsgRequiresClassSize
		}
		return MsgGeneric
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ev):
		return ev.Reason
	}
	return MsgGeneric
}

// HTTPStatus maps an error kind onto the status the local session API
// answers with.
func HTTPStatus(err error) int {
	var rf *RemoteFailure
	var ve *ValidationError
	var ev *EligibilityViolation
	switch {
	case errors.Is(err, ErrNoConnectivity):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrClosed):
		return http.StatusGone
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ev):
		return http.StatusConflict
	case errors.As(err, &rf):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
