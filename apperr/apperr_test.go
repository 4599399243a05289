// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no connectivity", ErrNoConnectivity, MsgNoConnectivity},
		{"wrapped no connectivity", fmt.Errorf("list polls: %w", ErrNoConnectivity), MsgNoConnectivity},
		{"remote message", &RemoteFailure{Status: 422, Message: "Poll is closed."}, "Poll is closed."},
		{"class size required", &RemoteFailure{Status: 422, RequiresClassSize: true}, MsgRequiresClassSize},
		{"remote without message", &RemoteFailure{Status: 500}, MsgGeneric},
		{"validation", Validation("title", "is required"), "title: is required"},
		{"validation without field", Validation("", "name is required"), "name is required"},
		{"eligibility", Ineligible("voting has closed"), "voting has closed"},
		{"teardown", ErrClosed, MsgGeneric},
		{"unknown", errors.New("boom"), MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("id", "bad"), http.StatusBadRequest},
		{"eligibility", Ineligible("no"), http.StatusConflict},
		{"remote", &RemoteFailure{Status: 404}, http.StatusBadGateway},
		{"no connectivity", ErrNoConnectivity, http.StatusServiceUnavailable},
		{"teardown", ErrClosed, http.StatusGone},
		{"wrapped eligibility", fmt.Errorf("vote: %w", Ineligible("no")), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromValidator(t *testing.T) {
	type form struct {
		Name string `validate:"required"`
	}

	err := FromValidator(validator.New().Struct(form{}))
	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "Name", ve.Field)
		assert.Contains(t, ve.Message, "required")
	}

	assert.NoError(t, FromValidator(nil))

	err = FromValidator(errors.New("plain"))
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "plain", ve.Message)
	}
}
