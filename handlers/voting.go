// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/voting"
)

type VotingHandler struct {
	detail *voting.DetailController
}

func NewVotingHandler(s *voting.Session) *VotingHandler {
	return &VotingHandler{detail: s.Detail}
}

// GetPoll handles GET /polls/{id}
func (h *VotingHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.detail.Load(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.detail.View())
}

// SelectOption handles POST /polls/{id}/options/{optionId}/select
// Votes, withdraws or switches depending on the current vote set. The
// response carries the settled view; on failure the view is still
// recoverable with GET /polls/{id}.
func (h *VotingHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	optionID, err := pathID(r, "optionId")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.detail.SelectOption(r.Context(), id, optionID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.detail.View())
}

// DismissMessages handles POST /polls/messages/dismiss
func (h *VotingHandler) DismissMessages(w http.ResponseWriter, r *http.Request) {
	h.detail.DismissMessages()
	middleware.JSONResponse(w, http.StatusOK, h.detail.View())
}
