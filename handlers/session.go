// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/tablo-voting/guest"
	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/voting"
)

type SessionHandler struct {
	list *voting.ListController
}

func NewSessionHandler(s *voting.Session) *SessionHandler {
	return &SessionHandler{list: s.List}
}

type activateResponse struct {
	Outcome guest.Outcome  `json:"outcome"`
	View    voting.ListView `json:"view"`
}

// Activate handles POST /session/activate
func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.list.Init(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, activateResponse{Outcome: outcome, View: h.list.View()})
}

// RegisterGuest handles POST /guest/register
func (h *SessionHandler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	var form models.GuestNameForm
	if err := middleware.ParseJSONBody(r, &form); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.list.SubmitGuestName(r.Context(), form); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// DismissGuest handles POST /guest/dismiss
func (h *SessionHandler) DismissGuest(w http.ResponseWriter, r *http.Request) {
	if err := h.list.DismissGuest(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}
