// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package dialog models a single modal dialog as a small value with pure
// transitions. Transitions return a new State; the receiver is never changed.
package dialog

type Status string

const (
	StatusClosed     Status = "closed"
	StatusOpen       Status = "open"
	StatusSubmitting Status = "submitting"
)

type State struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func Closed() State {
	return State{Status: StatusClosed}
}

func (s State) IsOpen() bool {
	return s.Status == StatusOpen || s.Status == StatusSubmitting
}

func (s State) IsSubmitting() bool {
	return s.Status == StatusSubmitting
}

// Open shows the dialog. A pending error is kept; use ClearError first to
// start fresh. Opening a submitting dialog is a no-op.
func (s State) Open() State {
	if s.Status == StatusSubmitting {
		return s
	}
	s.Status = StatusOpen
	return s
}

func (s State) Close() State {
	return Closed()
}

// StartSubmit only applies to an open dialog.
func (s State) StartSubmit() State {
	if s.Status != StatusOpen {
		return s
	}
	return State{Status: StatusSubmitting}
}

func (s State) SubmitSuccess() State {
	return Closed()
}

// SubmitError keeps the dialog open with msg so the viewer can retry.
func (s State) SubmitError(msg string) State {
	if s.Status == StatusClosed {
		return s
	}
	return State{Status: StatusOpen, Error: msg}
}

func (s State) ClearError() State {
	s.Error = ""
	return s
}
