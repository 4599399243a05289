// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votingapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/models"
)

// respond writes a remote envelope.
func respond(w http.ResponseWriter, status int, env any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "access-token", 7, SessionFunc(func() string { return "guest-token" }), 5*time.Second)
}

func TestClientHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polls", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active_only"))
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		assert.Equal(t, "guest-token", r.Header.Get("X-Guest-Session"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		respond(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})

	polls, err := c.ListPolls(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func TestClientOmitsEmptySession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["X-Guest-Session"]
		assert.False(t, ok)
		respond(w, http.StatusOK, map[string]any{"success": true, "data": nil})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "access-token", 7, nil, time.Second)
	require.NoError(t, c.DeletePoll(context.Background(), 3))
}

func TestClientGetPollMapsWireShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polls/42", r.URL.Path)
		respond(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"id":                  42,
				"title":               "Best laugh",
				"type":                "custom",
				"is_open":             true,
				"is_multiple_choice":  false,
				"max_votes_per_guest": 3,
				"my_votes":            []int{5, 5},
				"close_at":            "2026-06-01T12:00:00Z",
				"created_at":          "2026-05-01T08:00:00Z",
				"options":             []map[string]any{{"id": 5, "label": "Sam"}},
			},
		})
	})

	p, err := c.GetPoll(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, p.ID)
	assert.Equal(t, 1, p.MaxVotesPerGuest, "single choice always allows one vote")
	assert.Equal(t, []int{5}, p.MyVotes)
	require.NotNil(t, p.CloseAt)
	assert.Equal(t, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC), *p.CloseAt)
	require.Len(t, p.Options, 1)
	assert.Equal(t, "Sam", p.Options[0].Label)
}

func TestClientVote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/polls/3/vote", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.APIVoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 31, body.OptionID)

		respond(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Vote recorded.",
			"data":    map[string]any{"my_votes": []int{31}, "can_vote_more": false},
		})
	})

	res, err := c.Vote(context.Background(), 3, 31)
	require.NoError(t, err)
	assert.Equal(t, models.VoteResult{Message: "Vote recorded.", MyVotes: []int{31}}, res)
}

func TestClientVoteWithoutData(t *testing.T) {
	bodies := []string{
		`{"success":true,"message":"Vote recorded"}`,
		`{"success":true,"message":"Vote recorded","data":null}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			})

			res, err := c.Vote(context.Background(), 3, 31)
			require.NoError(t, err)
			assert.Equal(t, "Vote recorded", res.Message)
			assert.Nil(t, res.MyVotes, "no data means no authoritative vote set")

			res, err = c.RemoveVote(context.Background(), 3, nil)
			require.NoError(t, err)
			assert.Nil(t, res.MyVotes)
		})
	}
}

func TestClientRemoveAllVotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(raw), "no option id removes every vote")
		respond(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"my_votes": []int{}, "can_vote_more": true}})
	})

	res, err := c.RemoveVote(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, res.MyVotes)
	assert.True(t, res.CanVoteMore)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "remote message",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"message":"Poll is closed."}`,
			check: func(t *testing.T, err error) {
				var rf *apperr.RemoteFailure
				require.ErrorAs(t, err, &rf)
				assert.Equal(t, http.StatusUnprocessableEntity, rf.Status)
				assert.Equal(t, "Poll is closed.", apperr.Message(err))
			},
		},
		{
			name:   "class size required",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"requires_class_size":true}`,
			check: func(t *testing.T, err error) {
				var rf *apperr.RemoteFailure
				require.ErrorAs(t, err, &rf)
				assert.True(t, rf.RequiresClassSize)
			},
		},
		{
			name:   "non json error",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, apperr.MsgGeneric, apperr.Message(err))
			},
		},
		{
			name:   "success false",
			status: http.StatusOK,
			body:   `{"success":false,"message":"Nope."}`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "Nope.", apperr.Message(err))
			},
		},
		{
			name:   "garbled success",
			status: http.StatusOK,
			body:   `{"success":true,"data":`,
			check: func(t *testing.T, err error) {
				var rf *apperr.RemoteFailure
				assert.ErrorAs(t, err, &rf)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.GetPoll(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientNoConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", 7, nil, time.Second)
	_, err := c.ListPolls(context.Background(), false)
	assert.ErrorIs(t, err, apperr.ErrNoConnectivity)
	assert.Equal(t, apperr.MsgNoConnectivity, apperr.Message(err))
}

func TestClientCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"success": true})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListPolls(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, apperr.ErrNoConnectivity)
}

func TestClientCreatePollMultipart(t *testing.T) {
	closeAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Best laugh", r.FormValue("title"))
		assert.Equal(t, "custom", r.FormValue("type"))
		assert.Equal(t, "1", r.FormValue("is_multiple_choice"))
		assert.Equal(t, "2", r.FormValue("max_votes_per_guest"))
		assert.Equal(t, "0", r.FormValue("show_results_before_vote"))
		assert.Equal(t, "2026-06-01T12:00:00Z", r.FormValue("close_at"))
		assert.Equal(t, "Sam", r.FormValue("options[0][label]"))
		assert.Equal(t, "Alex", r.FormValue("options[1][label]"))
		assert.Empty(t, r.FormValue("_method"))

		f, hdr, err := r.FormFile("media[0]")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cover.jpg", hdr.Filename)
		raw, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg bytes", string(raw))

		respond(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": 9, "title": "Best laugh"}})
	})

	form := models.PollForm{
		Title:            "Best laugh",
		Type:             models.PollTypeCustom,
		IsMultipleChoice: true,
		MaxVotesPerGuest: 2,
		CloseAt:          &closeAt,
		Options:          []models.PollOptionForm{{Label: "Sam"}, {Label: "Alex"}},
	}
	p, err := c.CreatePoll(context.Background(), form, []Upload{{FileName: "cover.jpg", Content: strings.NewReader("jpeg bytes")}})
	require.NoError(t, err)
	assert.Equal(t, 9, p.ID)
}

func TestClientUpdatePollUsesMethodOverride(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/polls/4", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, http.MethodPut, r.FormValue("_method"))
		assert.Empty(t, r.FormValue("type"), "type is fixed after creation")
		assert.Equal(t, "12", r.FormValue("delete_media_ids[0]"))
		_, hasClose := r.MultipartForm.Value["close_at"]
		assert.True(t, hasClose, "an update always sends close_at so it can be cleared")

		respond(w, http.StatusOK, map[string]any{"success": true})
	})

	err := c.UpdatePoll(context.Background(), 4, models.PollForm{Title: "New title", DeleteMediaIDs: []int{12}}, nil)
	require.NoError(t, err)
}

func TestClientRegisterGuest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guest/register", r.URL.Path)
		var body models.APIRegisterGuestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jamie", body.GuestName)
		assert.Nil(t, body.GuestEmail)

		respond(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id": 12, "session_token": "tok", "guest_name": "Jamie",
		}})
	})

	gs, err := c.RegisterGuest(context.Background(), "Jamie", nil)
	require.NoError(t, err)
	assert.Equal(t, models.GuestSession{ProjectID: 7, Token: "tok", GuestID: 12, GuestName: "Jamie"}, gs)
}

func TestClientSetExpectedClassSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/class-size", r.URL.Path)
		respond(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"expected_class_size": 31}})
	})

	size, err := c.SetExpectedClassSize(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, 31, size)
}
