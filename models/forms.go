// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Class size bounds accepted before any network call.
const (
	MinClassSize = 5
	MaxClassSize = 500
)

// Request types
//
// Forms submitted by the UI shell. They are validated locally with struct
// tags so a rejected form never reaches the remote API.

type ClassSizeForm struct {
	ExpectedClassSize int `json:"expectedClassSize" validate:"min=5,max=500"`
}

type GuestNameForm struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type PollOptionForm struct {
	Label       string `json:"label" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
}

type PollForm struct {
	Title                 string           `json:"title" validate:"required,max=255"`
	Description           string           `json:"description,omitempty"`
	Type                  PollType         `json:"type" validate:"required,oneof=template custom"`
	IsMultipleChoice      bool             `json:"isMultipleChoice"`
	MaxVotesPerGuest      int              `json:"maxVotesPerGuest" validate:"omitempty,min=1,max=50"`
	ShowResultsBeforeVote bool             `json:"showResultsBeforeVote"`
	CloseAt               *time.Time       `json:"closeAt,omitempty"`
	Options               []PollOptionForm `json:"options" validate:"dive"`
	DeleteMediaIDs        []int            `json:"deleteMediaIds,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate runs the struct-tag rules on a form.
func Validate(form any) error {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate.Struct(form)
}
