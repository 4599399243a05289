// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/models"
)

// Remote routes, relative to the tenant-scoped base URL.
const (
	pathPolls        = "/polls"
	pathParticipants = "/participants"
	pathGuest        = "/guest/register"
	pathClassSize    = "/class-size"
)

const maxResponseBytes = 4 << 20

func pollPath(id int) string { return pathPolls + "/" + strconv.Itoa(id) }

// Client talks to the remote voting API over HTTP.
type Client struct {
	baseURL     string
	accessToken string
	projectID   int
	session     SessionSource
	http        *http.Client
}

var _ API = (*Client)(nil)

// NewClient builds a client. Transport timeouts belong to the HTTP client;
// the voting core itself never times anything out.
func NewClient(baseURL, accessToken string, projectID int, session SessionSource, timeout time.Duration) *Client {
	if session == nil {
		session = SessionFunc(func() string { return "" })
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		projectID:   projectID,
		session:     session,
		http:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListPolls(ctx context.Context, activeOnly bool) ([]models.Poll, error) {
	path := pathPolls
	if activeOnly {
		path += "?active_only=true"
	}
	var data []models.APIPoll
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return models.MapPolls(data), nil
}

func (c *Client) GetPoll(ctx context.Context, id int) (models.Poll, error) {
	var data models.APIPoll
	if _, err := c.doJSON(ctx, http.MethodGet, pollPath(id), nil, &data); err != nil {
		return models.Poll{}, fmt.Errorf("get poll %d: %w", id, err)
	}
	return models.MapPoll(data), nil
}

func (c *Client) GetResults(ctx context.Context, id int) (models.PollResults, error) {
	var data models.APIResults
	if _, err := c.doJSON(ctx, http.MethodGet, pollPath(id)+"/results", nil, &data); err != nil {
		return models.PollResults{}, fmt.Errorf("get results %d: %w", id, err)
	}
	return models.MapResults(data), nil
}

func (c *Client) Vote(ctx context.Context, id, optionID int) (models.VoteResult, error) {
	var data *models.APIVote
	msg, err := c.doJSON(ctx, http.MethodPost, pollPath(id)+"/vote", models.APIVoteRequest{OptionID: optionID}, &data)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("vote on poll %d: %w", id, err)
	}
	return models.MapVote(data, msg), nil
}

func (c *Client) RemoveVote(ctx context.Context, id int, optionID *int) (models.VoteResult, error) {
	var data *models.APIVote
	msg, err := c.doJSON(ctx, http.MethodDelete, pollPath(id)+"/vote", models.APIRemoveVoteRequest{OptionID: optionID}, &data)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("remove vote on poll %d: %w", id, err)
	}
	return models.MapVote(data, msg), nil
}

func (c *Client) CreatePoll(ctx context.Context, form models.PollForm, media []Upload) (models.Poll, error) {
	body, contentType, err := encodePollForm(form, media, false)
	if err != nil {
		return models.Poll{}, fmt.Errorf("encode poll form: %w", err)
	}
	var data models.APIPoll
	if _, err := c.do(ctx, http.MethodPost, pathPolls, body, contentType, &data); err != nil {
		return models.Poll{}, fmt.Errorf("create poll: %w", err)
	}
	return models.MapPoll(data), nil
}

func (c *Client) UpdatePoll(ctx context.Context, id int, form models.PollForm, media []Upload) error {
	body, contentType, err := encodePollForm(form, media, true)
	if err != nil {
		return fmt.Errorf("encode poll form: %w", err)
	}
	// Multipart bodies travel as POST with a method override
	if _, err := c.do(ctx, http.MethodPost, pollPath(id), body, contentType, nil); err != nil {
		return fmt.Errorf("update poll %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeletePoll(ctx context.Context, id int) error {
	if _, err := c.doJSON(ctx, http.MethodDelete, pollPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete poll %d: %w", id, err)
	}
	return nil
}

func (c *Client) ClosePoll(ctx context.Context, id int) error {
	if _, err := c.doJSON(ctx, http.MethodPost, pollPath(id)+"/close", struct{}{}, nil); err != nil {
		return fmt.Errorf("close poll %d: %w", id, err)
	}
	return nil
}

func (c *Client) ReopenPoll(ctx context.Context, id int, closeAt *time.Time) error {
	req := models.APIReopenRequest{}
	if closeAt != nil {
		s := models.FormatTime(*closeAt)
		req.CloseAt = &s
	}
	if _, err := c.doJSON(ctx, http.MethodPost, pollPath(id)+"/reopen", req, nil); err != nil {
		return fmt.Errorf("reopen poll %d: %w", id, err)
	}
	return nil
}

func (c *Client) ListParticipants(ctx context.Context) (models.ParticipantList, error) {
	var data models.APIParticipants
	if _, err := c.doJSON(ctx, http.MethodGet, pathParticipants, nil, &data); err != nil {
		return models.ParticipantList{}, fmt.Errorf("list participants: %w", err)
	}
	return models.MapParticipants(data), nil
}

func (c *Client) ToggleParticipantExtra(ctx context.Context, guestID int) (models.ToggleExtraResult, error) {
	var data models.APIToggleExtra
	path := pathParticipants + "/" + strconv.Itoa(guestID) + "/toggle-extra"
	if _, err := c.doJSON(ctx, http.MethodPost, path, struct{}{}, &data); err != nil {
		return models.ToggleExtraResult{}, fmt.Errorf("toggle extra for guest %d: %w", guestID, err)
	}
	return models.ToggleExtraResult{IsExtra: data.IsExtra}, nil
}

func (c *Client) RegisterGuest(ctx context.Context, name string, email *string) (models.GuestSession, error) {
	var data models.APIGuestSession
	req := models.APIRegisterGuestRequest{GuestName: name, GuestEmail: email}
	if _, err := c.doJSON(ctx, http.MethodPost, pathGuest, req, &data); err != nil {
		return models.GuestSession{}, fmt.Errorf("register guest: %w", err)
	}
	return models.MapGuestSession(c.projectID, data), nil
}

func (c *Client) SetExpectedClassSize(ctx context.Context, size int) (int, error) {
	var data models.APIClassSize
	if _, err := c.doJSON(ctx, http.MethodPut, pathClassSize, models.APIClassSizeRequest{ExpectedClassSize: size}, &data); err != nil {
		return 0, fmt.Errorf("set class size: %w", err)
	}
	return data.ExpectedClassSize, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (string, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// do sends one request and unwraps the response envelope. It returns the
// envelope message on success.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if token := c.session.SessionToken(); token != "" {
		req.Header.Set("X-Guest-Session", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrNoConnectivity, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", apperr.ErrNoConnectivity, err)
	}

	var env models.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &apperr.RemoteFailure{
			Status:            resp.StatusCode,
			Message:           env.Message,
			RequiresClassSize: env.RequiresClassSize,
		}
	}
	if decodeErr != nil {
		return "", &apperr.RemoteFailure{Status: resp.StatusCode, Message: "invalid response from server"}
	}
	if !env.Success {
		return "", &apperr.RemoteFailure{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", errors.Join(&apperr.RemoteFailure{Status: resp.StatusCode, Message: "invalid response from server"}, err)
		}
	}
	return env.Message, nil
}

// encodePollForm builds the multipart body the remote API expects for poll
// create and update, including media uploads.
func encodePollForm(form models.PollForm, media []Upload, update bool) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{}
	add := func(k, v string) { fields = append(fields, [2]string{k, v}) }
	boolField := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}

	if form.Title != "" {
		add("title", form.Title)
	}
	if !update {
		add("type", string(form.Type))
	}
	if form.Description != "" || update {
		add("description", form.Description)
	}
	add("is_multiple_choice", boolField(form.IsMultipleChoice))
	if form.MaxVotesPerGuest > 0 {
		add("max_votes_per_guest", strconv.Itoa(form.MaxVotesPerGuest))
	}
	add("show_results_before_vote", boolField(form.ShowResultsBeforeVote))
	if form.CloseAt != nil {
		add("close_at", models.FormatTime(*form.CloseAt))
	} else if update {
		add("close_at", "")
	}
	if !update {
		for i, opt := range form.Options {
			add(fmt.Sprintf("options[%d][label]", i), opt.Label)
			if opt.Description != "" {
				add(fmt.Sprintf("options[%d][description]", i), opt.Description)
			}
		}
	} else {
		for i, id := range form.DeleteMediaIDs {
			add(fmt.Sprintf("delete_media_ids[%d]", i), strconv.Itoa(id))
		}
		add("_method", http.MethodPut)
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for i, m := range media {
		part, err := w.CreateFormFile(fmt.Sprintf("media[%d]", i), m.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, m.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
