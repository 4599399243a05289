// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/tablo-voting/eligibility"
	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/voting"
)

type ResultsHandler struct {
	detail *voting.DetailController
}

func NewResultsHandler(s *voting.Session) *ResultsHandler {
	return &ResultsHandler{detail: s.Detail}
}

type optionResult struct {
	models.PollOption
	PercentageLabel string `json:"percentageLabel"`
}

type resultsResponse struct {
	models.PollResults
	Options []optionResult `json:"options"`
}

// GetResults handles GET /polls/{id}/results
// Refused with 409 while results are hidden from the viewer.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	res, err := h.detail.Results(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := resultsResponse{PollResults: res, Options: make([]optionResult, 0, len(res.Options))}
	for _, o := range res.Options {
		label := ""
		if o.Percentage != nil {
			label = eligibility.FormatPercentage(*o.Percentage)
		}
		resp.Options = append(resp.Options, optionResult{PollOption: o, PercentageLabel: label})
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
