// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/roster"
	"github.com/danielhkuo/tablo-voting/voting"
)

type ParticipantHandler struct {
	list *voting.ListController
	now  func() time.Time
}

func NewParticipantHandler(s *voting.Session) *ParticipantHandler {
	return &ParticipantHandler{list: s.List, now: time.Now}
}

type participantView struct {
	models.Participant
	LastSeen string `json:"lastSeen"`
	Active   bool   `json:"active"`
}

type rosterResponse struct {
	roster.State
	Participants []participantView `json:"participants"`
	ActiveCount  int               `json:"activeCount"`
}

func (h *ParticipantHandler) render(st roster.State) rosterResponse {
	now := h.now()
	active := map[int]bool{}
	for _, p := range st.Active(now) {
		active[p.ID] = true
	}

	resp := rosterResponse{State: st, Participants: make([]participantView, 0, len(st.Participants)), ActiveCount: len(active)}
	for _, p := range st.Participants {
		resp.Participants = append(resp.Participants, participantView{
			Participant: p,
			LastSeen:    roster.LastSeen(p, now),
			Active:      active[p.ID],
		})
	}
	return resp
}

// ListParticipants handles GET /participants
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	st, err := h.list.LoadParticipants(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.render(st))
}

// CloseParticipants handles POST /participants/close
func (h *ParticipantHandler) CloseParticipants(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.render(h.list.CloseParticipants()))
}

// ToggleExtra handles POST /participants/{id}/toggle-extra
func (h *ParticipantHandler) ToggleExtra(w http.ResponseWriter, r *http.Request) {
	guestID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	st, err := h.list.ToggleExtra(r.Context(), guestID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.render(st))
}
