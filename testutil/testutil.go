// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/tablo-voting/cliparse"
	"github.com/danielhkuo/tablo-voting/db"
	"github.com/danielhkuo/tablo-voting/models"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(apiURL string) cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		VotingAPIURL: apiURL,
		AccessToken:  "test-token",
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		HTTPTimeout:  2 * time.Second,
	}
}

// MockPoll returns an open single-choice poll with two options. Overrides
// run in order on the result.
func MockPoll(id int, overrides ...func(*models.Poll)) models.Poll {
	p := models.Poll{
		ID:               id,
		Title:            "Class photo location",
		Description:      "Where should we take the class photo?",
		Media:            []models.PollMedia{},
		Type:             models.PollTypeCustom,
		IsActive:         true,
		IsOpen:           true,
		MaxVotesPerGuest: 1,
		CanVote:          true,
		MyVotes:          []int{},
		OptionsCount:     2,
		Options: []models.PollOption{
			MockOption(id*10+1, "Schoolyard"),
			MockOption(id*10+2, "Gym"),
		},
		CreatedAt: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
	}
	for _, o := range overrides {
		o(&p)
	}
	return p
}

func MockOption(id int, label string) models.PollOption {
	return models.PollOption{ID: id, Label: label}
}

// Closed marks a mock poll closed
func Closed(p *models.Poll) {
	p.IsOpen = false
	p.IsActive = false
}

// MultipleChoice allows up to max votes per guest
func MultipleChoice(max int) func(*models.Poll) {
	return func(p *models.Poll) {
		p.IsMultipleChoice = true
		p.MaxVotesPerGuest = max
	}
}

// Voted sets the guest's current vote set
func Voted(optionIDs ...int) func(*models.Poll) {
	return func(p *models.Poll) {
		p.MyVotes = append([]int{}, optionIDs...)
	}
}

// MockParticipants returns a roster of regular participants with the given
// number of extras at the front.
func MockParticipants(total, extras int, expected *int) models.ParticipantList {
	now := time.Now()
	list := models.ParticipantList{Participants: []models.Participant{}}
	for i := 1; i <= total; i++ {
		seen := now.Add(-time.Duration(i) * time.Hour)
		list.Participants = append(list.Participants, models.Participant{
			ID:             i,
			GuestName:      "Guest " + string(rune('A'+i-1)),
			IsExtra:        i <= extras,
			LastActivityAt: &seen,
		})
	}
	list.Statistics = models.ParticipantStatistics{
		TotalCount:        total,
		ActiveCount:       total,
		ExtraCount:        extras,
		RegularCount:      total - extras,
		ExpectedClassSize: expected,
	}
	if expected != nil && *expected > 0 {
		list.Statistics.ParticipationRate = float64((total-extras)*100) / float64(*expected)
	}
	return list
}

// AccessToken signs a token carrying the claims the auth package reads.
// The signature is never verified by the session API.
func AccessToken(t *testing.T, tokenType models.TokenType, project models.Project) string {
	t.Helper()

	claims := jwt.MapClaims{
		"token_type": string(tokenType),
		"project_id": project.ID,
		"project": map[string]any{
			"id":                  project.ID,
			"name":                project.Name,
			"expected_class_size": project.ExpectedClassSize,
			"contacts":            project.Contacts,
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign access token: %v", err)
	}
	return signed
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

func IntPtr(v int) *int { return &v }

func StrPtr(v string) *string { return &v }
