// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/voting"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

const maxUploadMemory = 32 << 20

type PollHandler struct {
	list *voting.ListController
}

func NewPollHandler(s *voting.Session) *PollHandler {
	return &PollHandler{list: s.List}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// ReloadPolls handles POST /polls/reload
func (h *PollHandler) ReloadPolls(w http.ResponseWriter, r *http.Request) {
	if err := h.list.LoadPolls(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// StartCreate handles POST /polls/create/start
func (h *PollHandler) StartCreate(w http.ResponseWriter, r *http.Request) {
	snap, err := h.list.StartCreatePoll()
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// CancelCreate handles POST /polls/create/cancel
func (h *PollHandler) CancelCreate(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.list.CancelCreate())
}

// CreatePoll handles POST /polls
// Accepts a JSON PollForm, or multipart with the form in "payload" and
// files in "media".
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	form, media, err := parsePollForm(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeUploads(media)

	poll, err := h.list.SubmitCreate(r.Context(), form, media)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// UpdatePoll handles PUT /polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	form, media, err := parsePollForm(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeUploads(media)

	if err := h.list.StartEdit(id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.list.SubmitEdit(r.Context(), form, media); err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			h.list.CancelEdit()
		}
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.list.StartDelete(id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.list.SubmitDelete(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// CancelEdit handles POST /polls/edit/cancel
func (h *PollHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.list.CancelEdit()
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// CancelDelete handles POST /polls/delete/cancel
func (h *PollHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.list.CancelDelete()
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.list.ClosePoll(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	slog.Info("poll closed", "poll_id", id)
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// ReopenPoll handles POST /polls/{id}/reopen
func (h *PollHandler) ReopenPoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.list.ReopenPoll(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	slog.Info("poll reopened", "poll_id", id)
	middleware.JSONResponse(w, http.StatusOK, h.list.View())
}

// StartEditClassSize handles POST /class-size/edit
func (h *PollHandler) StartEditClassSize(w http.ResponseWriter, r *http.Request) {
	snap, err := h.list.StartEditClassSize()
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

type classSizeRequest struct {
	ExpectedClassSize *float64 `json:"expectedClassSize"`
}

// SubmitClassSize handles POST /class-size
func (h *PollHandler) SubmitClassSize(w http.ResponseWriter, r *http.Request) {
	var req classSizeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Fractions never reach the coordinator
	v := req.ExpectedClassSize
	if v == nil || *v != math.Trunc(*v) || *v > math.MaxInt32 || *v < math.MinInt32 {
		middleware.WriteError(w, apperr.Validation("expectedClassSize", "class size must be a whole number between 5 and 500"))
		return
	}

	snap, err := h.list.SubmitClassSize(r.Context(), int(*v))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// CancelClassSize handles POST /class-size/cancel
func (h *PollHandler) CancelClassSize(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.list.CancelClassSize())
}

func closeUploads(media []votingapi.Upload) {
	for _, m := range media {
		if c, ok := m.Content.(io.Closer); ok {
			c.Close()
		}
	}
}

func parsePollForm(r *http.Request) (models.PollForm, []votingapi.Upload, error) {
	var form models.PollForm

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := middleware.ParseJSONBody(r, &form); err != nil {
			return form, nil, errors.New("Invalid JSON")
		}
		return form, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return form, nil, errors.New("Invalid multipart form")
	}
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &form); err != nil {
		return form, nil, errors.New("Invalid payload JSON")
	}

	var media []votingapi.Upload
	for _, fh := range r.MultipartForm.File["media"] {
		f, err := fh.Open()
		if err != nil {
			closeUploads(media)
			return form, nil, errors.New("Unreadable media file")
		}
		media = append(media, votingapi.Upload{FileName: fh.Filename, Content: f})
	}
	return form, media, nil
}
