// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/flow"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/testutil"
	"github.com/danielhkuo/tablo-voting/voting"
)

func validPollForm() models.PollForm {
	return models.PollForm{
		Title:            "Yearbook cover",
		Description:      "Pick the cover style",
		Type:             models.PollTypeCustom,
		MaxVotesPerGuest: 1,
		Options: []models.PollOptionForm{
			{Label: "Classic"},
			{Label: "Modern"},
		},
	}
}

func TestCreatePoll(t *testing.T) {
	missingTitle := validPollForm()
	missingTitle.Title = ""
	badType := validPollForm()
	badType.Type = "ranked"

	tests := []struct {
		name           string
		openDialog     bool
		requestBody    any
		expectedStatus int
		checkResponse  func(t *testing.T, poll models.Poll, api *testutil.FakeAPI)
	}{
		{
			name:           "valid poll creation",
			openDialog:     true,
			requestBody:    validPollForm(),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, poll models.Poll, api *testutil.FakeAPI) {
				if poll.ID != 1001 {
					t.Errorf("Expected poll id 1001, got %d", poll.ID)
				}
				if len(poll.Options) != 2 {
					t.Errorf("Expected 2 options, got %d", len(poll.Options))
				}
				// Creation reloads the list
				if api.Calls("ListPolls") != 2 {
					t.Errorf("Expected list reload after create, got %d list calls", api.Calls("ListPolls"))
				}
			},
		},
		{
			name:           "missing title",
			openDialog:     true,
			requestBody:    missingTitle,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown poll type",
			openDialog:     true,
			requestBody:    badType,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			openDialog:     true,
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "create dialog not open",
			requestBody:    validPollForm(),
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
			handler := NewPollHandler(sess)

			if tt.openDialog {
				w := httptest.NewRecorder()
				handler.StartCreate(w, httptest.NewRequest("POST", "/polls/create/start", nil))
				testutil.AssertStatus(t, w, http.StatusOK)
			}

			req := testutil.MakeRequest("POST", "/polls", tt.requestBody, nil)
			w := httptest.NewRecorder()
			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == http.StatusCreated {
				var poll models.Poll
				testutil.AssertJSON(t, w, &poll)
				tt.checkResponse(t, poll, api)
			}
			if w.Code != http.StatusCreated && api.Calls("CreatePoll") != 0 {
				t.Errorf("Rejected form must not reach the remote API")
			}
		})
	}
}

func TestCreatePollMultipart(t *testing.T) {
	sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
	handler := NewPollHandler(sess)

	handler.StartCreate(httptest.NewRecorder(), httptest.NewRequest("POST", "/polls/create/start", nil))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	payload, _ := json.Marshal(validPollForm())
	mw.WriteField("payload", string(payload))
	fw, err := mw.CreateFormFile("media", "cover.jpg")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write([]byte("not really a jpeg"))
	mw.Close()

	req := httptest.NewRequest("POST", "/polls", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	created, ok := api.Poll(1001)
	if !ok {
		t.Fatal("Expected poll 1001 to exist")
	}
	if len(created.Media) != 1 || created.Media[0].FileName != "cover.jpg" {
		t.Errorf("Expected one media file named cover.jpg, got %+v", created.Media)
	}
}

func TestStartCreateRequiresClassSize(t *testing.T) {
	access := moderatorAccess()
	access.Project.ExpectedClassSize = nil
	sess, _ := setupSession(t, access)
	handler := NewPollHandler(sess)

	w := httptest.NewRecorder()
	handler.StartCreate(w, httptest.NewRequest("POST", "/polls/create/start", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap flow.Snapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.Stage != flow.StageAwaitingClassSize {
		t.Fatalf("Expected stage %q, got %q", flow.StageAwaitingClassSize, snap.Stage)
	}

	// Submitting the class size continues into the create dialog
	w = httptest.NewRecorder()
	handler.SubmitClassSize(w, testutil.MakeRequest("POST", "/class-size", map[string]any{"expectedClassSize": 25}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	snap = flow.Snapshot{}
	testutil.AssertJSON(t, w, &snap)
	if snap.Stage != flow.StageCreateDialogOpen {
		t.Errorf("Expected stage %q, got %q", flow.StageCreateDialogOpen, snap.Stage)
	}
}

func TestSubmitClassSize(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		expectedSize   int
	}{
		{"valid size", map[string]any{"expectedClassSize": 30}, http.StatusOK, 30},
		{"lower bound", map[string]any{"expectedClassSize": 5}, http.StatusOK, 5},
		{"upper bound", map[string]any{"expectedClassSize": 500}, http.StatusOK, 500},
		{"fraction", map[string]any{"expectedClassSize": 12.5}, http.StatusBadRequest, 0},
		{"too small", map[string]any{"expectedClassSize": 4}, http.StatusBadRequest, 0},
		{"too large", map[string]any{"expectedClassSize": 501}, http.StatusBadRequest, 0},
		{"missing", map[string]any{}, http.StatusBadRequest, 0},
		{"invalid JSON", "invalid json", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
			handler := NewPollHandler(sess)

			handler.StartEditClassSize(httptest.NewRecorder(), httptest.NewRequest("POST", "/class-size/edit", nil))

			w := httptest.NewRecorder()
			handler.SubmitClassSize(w, testutil.MakeRequest("POST", "/class-size", tt.requestBody, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if api.ClassSize != tt.expectedSize {
				t.Errorf("Expected remote class size %d, got %d", tt.expectedSize, api.ClassSize)
			}
		})
	}
}

func TestModeratorOnlyEndpoints(t *testing.T) {
	sess, api := setupSession(t, guestAccess(), testutil.MockPoll(1))
	handler := NewPollHandler(sess)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    any
	}{
		{"start create", handler.StartCreate, "POST", nil},
		{"edit class size", handler.StartEditClassSize, "POST", nil},
		{"close poll", handler.ClosePoll, "POST", nil},
		{"reopen poll", handler.ReopenPoll, "POST", nil},
		{"delete poll", handler.DeletePoll, "DELETE", nil},
		{"update poll", handler.UpdatePoll, "PUT", validPollForm()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest(tt.method, "/polls/1", tt.body, nil)
			req.SetPathValue("id", "1")
			w := httptest.NewRecorder()

			tt.handler(w, req)

			testutil.AssertStatus(t, w, http.StatusConflict)
		})
	}

	for _, op := range []string{"ClosePoll", "ReopenPoll", "DeletePoll", "UpdatePoll"} {
		if api.Calls(op) != 0 {
			t.Errorf("Expected no %s calls for a share token, got %d", op, api.Calls(op))
		}
	}
}

func TestCloseAndReopenPoll(t *testing.T) {
	sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1), testutil.MockPoll(2))
	handler := NewPollHandler(sess)

	req := httptest.NewRequest("POST", "/polls/1/close", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.ClosePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var view voting.ListView
	testutil.AssertJSON(t, w, &view)
	if view.Success != voting.MsgPollClosed {
		t.Errorf("Expected success %q, got %q", voting.MsgPollClosed, view.Success)
	}
	if len(view.Active) != 1 || len(view.Closed) != 1 || view.Closed[0].ID != 1 {
		t.Errorf("Expected poll 1 to move to the closed partition, got active=%d closed=%d", len(view.Active), len(view.Closed))
	}

	req = httptest.NewRequest("POST", "/polls/1/reopen", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	handler.ReopenPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	reopened, _ := api.Poll(1)
	if !reopened.IsOpen {
		t.Error("Expected poll 1 to be open again")
	}
	if reopened.CloseAt == nil {
		t.Fatal("Expected reopen to set a close date")
	}
	if d := time.Until(*reopened.CloseAt); d < 6*24*time.Hour || d > voting.ReopenPeriod {
		t.Errorf("Expected close date about a week out, got %v", d)
	}
}

func TestClosePollRemoteFailure(t *testing.T) {
	sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
	handler := NewPollHandler(sess)
	api.Fail("ClosePoll", &plainError{})

	req := httptest.NewRequest("POST", "/polls/1/close", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.ClosePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	st := sess.List.Store().Get()
	if st.Submitting {
		t.Error("Expected submitting flag to be cleared after failure")
	}
	if st.Error == "" {
		t.Error("Expected an error message on the list")
	}
}

// plainError is an unclassified failure.
type plainError struct{}

func (*plainError) Error() string { return "boom" }

func TestUpdatePoll(t *testing.T) {
	sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
	handler := NewPollHandler(sess)

	form := validPollForm()
	form.Title = "Renamed"

	req := testutil.MakeRequest("PUT", "/polls/1", form, nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	updated, _ := api.Poll(1)
	if updated.Title != "Renamed" {
		t.Errorf("Expected title 'Renamed', got %q", updated.Title)
	}
	if st := sess.List.Store().Get(); st.EditDialog.IsOpen() {
		t.Error("Expected edit dialog to close on success")
	}

	// Invalid forms leave the remote poll alone
	form.Title = ""
	req = testutil.MakeRequest("PUT", "/polls/1", form, nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	handler.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if api.Calls("UpdatePoll") != 1 {
		t.Errorf("Expected 1 UpdatePoll call, got %d", api.Calls("UpdatePoll"))
	}
}

func TestDeletePoll(t *testing.T) {
	tests := []struct {
		name           string
		pollID         string
		expectedStatus int
	}{
		{"existing poll", "1", http.StatusOK},
		{"unknown poll", "99", http.StatusConflict},
		{"invalid id", "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
			handler := NewPollHandler(sess)

			req := httptest.NewRequest("DELETE", "/polls/"+tt.pollID, nil)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()
			handler.DeletePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var view voting.ListView
			testutil.AssertJSON(t, w, &view)
			if len(view.Polls) != 0 {
				t.Errorf("Expected poll to be removed locally, got %d polls", len(view.Polls))
			}
			if api.Calls("ListPolls") != 1 {
				t.Errorf("Delete must not reload the list, got %d list calls", api.Calls("ListPolls"))
			}
		})
	}
}

func TestCancelDeleteAfterFailure(t *testing.T) {
	sess, api := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
	api.Fail("DeletePoll", &apperr.RemoteFailure{Status: 500, Message: "Server error."})
	handler := NewPollHandler(sess)

	req := httptest.NewRequest("DELETE", "/polls/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.DeletePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusBadGateway)

	st := sess.List.Store().Get()
	if st.DeleteDialog.Error != "Server error." {
		t.Errorf("Expected the delete dialog to keep the error, got %+v", st.DeleteDialog)
	}

	w = httptest.NewRecorder()
	handler.CancelDelete(w, httptest.NewRequest("POST", "/polls/delete/cancel", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	st = sess.List.Store().Get()
	if st.DeleteDialog.IsOpen() || st.DeleteTarget != nil {
		t.Errorf("Expected the delete dialog to be closed, got %+v", st.DeleteDialog)
	}
	if len(st.Polls) != 1 {
		t.Errorf("Expected the poll to remain listed, got %d polls", len(st.Polls))
	}
}

func TestCancelEdit(t *testing.T) {
	sess, _ := setupSession(t, moderatorAccess(), testutil.MockPoll(1))
	if err := sess.List.StartEdit(1); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}

	w := httptest.NewRecorder()
	NewPollHandler(sess).CancelEdit(w, httptest.NewRequest("POST", "/polls/edit/cancel", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if st := sess.List.Store().Get(); st.EditDialog.IsOpen() || st.EditTarget != nil {
		t.Error("Expected the edit dialog to be closed")
	}
}
