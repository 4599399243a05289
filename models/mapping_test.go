// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPollVoteBudget(t *testing.T) {
	tests := []struct {
		name     string
		multiple bool
		max      int
		want     int
	}{
		{"single choice ignores budget", false, 5, 1},
		{"multiple keeps budget", true, 3, 3},
		{"multiple with zero budget", true, 0, 1},
		{"multiple with negative budget", true, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MapPoll(APIPoll{ID: 1, IsMultipleChoice: tt.multiple, MaxVotesPerGuest: tt.max})
			assert.Equal(t, tt.want, p.MaxVotesPerGuest)
		})
	}
}

func TestMapPollFromJSON(t *testing.T) {
	raw := `{
		"id": 3,
		"title": "Most likely to succeed",
		"description": "Pick one",
		"type": "template",
		"is_active": true,
		"is_open": true,
		"is_multiple_choice": true,
		"max_votes_per_guest": 2,
		"can_vote": true,
		"my_votes": [31, 32, 31],
		"total_votes": 9,
		"close_at": "not a time",
		"created_at": "2026-05-01T08:00:00Z",
		"media": [{"id": 1, "url": "https://cdn.example.com/a.jpg", "fileName": "a.jpg", "sortOrder": 0}],
		"options": [{"id": 31, "label": "Sam", "votes_count": 4}]
	}`

	var in APIPoll
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	p := MapPoll(in)

	assert.Equal(t, "Pick one", p.Description)
	assert.Equal(t, PollTypeTemplate, p.Type)
	assert.Equal(t, []int{31, 32}, p.MyVotes)
	assert.Nil(t, p.CloseAt, "an unparseable close time is dropped")
	assert.Equal(t, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), p.CreatedAt)
	require.Len(t, p.Media, 1)
	assert.Equal(t, "a.jpg", p.Media[0].FileName)
	require.Len(t, p.Options, 1)
	assert.Equal(t, 4, *p.Options[0].VotesCount)
	assert.Nil(t, p.Options[0].Percentage)
}

func TestMapPollEmptyVotesRenderAsArray(t *testing.T) {
	p := MapPoll(APIPoll{ID: 1})
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"myVotes":[]`)
	assert.Nil(t, p.Options, "a list payload carries no options")
}

func TestMapPollCapsVotesToBudget(t *testing.T) {
	single := MapPoll(APIPoll{ID: 1, MyVotes: []int{10, 11}})
	assert.Equal(t, []int{10}, single.MyVotes)

	multi := MapPoll(APIPoll{ID: 2, IsMultipleChoice: true, MaxVotesPerGuest: 2, MyVotes: []int{10, 11, 11, 12}})
	assert.Equal(t, []int{10, 11}, multi.MyVotes)
}

func TestMapVote(t *testing.T) {
	empty := MapVote(nil, "Vote recorded")
	assert.Equal(t, "Vote recorded", empty.Message)
	assert.Nil(t, empty.MyVotes)

	var in *APIVote
	require.NoError(t, json.Unmarshal([]byte(`{"vote_id":5,"my_votes":[],"can_vote_more":true}`), &in))
	res := MapVote(in, "Vote removed")
	assert.NotNil(t, res.MyVotes, "an empty set from the server is still authoritative")
	assert.Empty(t, res.MyVotes)
	assert.True(t, res.CanVoteMore)
}

func TestPollWithVoteResult(t *testing.T) {
	pct := 50.0
	p := Poll{ID: 1, MyVotes: []int{10, 11}, Options: []PollOption{{ID: 10, VotesCount: intPtr(2), Percentage: &pct}}}

	assert.Equal(t, p, p.WithVoteResult(VoteResult{Message: "ok"}))

	next := p.WithVoteResult(VoteResult{MyVotes: []int{10}, CanVoteMore: true})
	assert.Equal(t, []int{10}, next.MyVotes)
	assert.True(t, next.CanVote)

	stripped := next.WithoutResults()
	assert.Nil(t, stripped.Options[0].VotesCount)
	assert.Nil(t, stripped.Options[0].Percentage)
	assert.Equal(t, 2, *p.Options[0].VotesCount, "the receiver keeps its counts")
}

func TestMapResultsFillsZeros(t *testing.T) {
	in := APIResults{TotalVotes: 4, Options: []APIPollOption{
		{ID: 1, Label: "A", VotesCount: intPtr(4), Percentage: floatPtr(100)},
		{ID: 2, Label: "B"},
	}}
	in.Poll.ID = 9

	res := MapResults(in)
	assert.Equal(t, 9, res.PollID)
	require.Len(t, res.Options, 2)
	assert.Equal(t, 0, *res.Options[1].VotesCount)
	assert.Equal(t, 0.0, *res.Options[1].Percentage)
	assert.Equal(t, 100.0, *res.Options[0].Percentage)
}

func TestMapParticipants(t *testing.T) {
	seen := "2026-05-01T08:00:00Z"
	list := MapParticipants(APIParticipants{
		Participants: []APIParticipant{
			{ID: 1, GuestName: "Jamie", LastActivityAt: &seen, VotesCount: 3},
			{ID: 2, GuestName: "Alex", IsExtra: true},
		},
		Statistics: APIParticipantStatistics{Total: 2, Extra: 1, Regular: 1, ExpectedClassSize: intPtr(10), ParticipationRate: 10},
	})

	require.Len(t, list.Participants, 2)
	assert.Equal(t, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), *list.Participants[0].LastActivityAt)
	assert.Nil(t, list.Participants[1].LastActivityAt)
	assert.Equal(t, 1, list.Statistics.ExtraCount)
	assert.Equal(t, 10, *list.Statistics.ExpectedClassSize)
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "2026-06-01T10:00:00Z", FormatTime(time.Date(2026, 6, 1, 12, 0, 0, 0, loc)))
}

func TestValidateForms(t *testing.T) {
	tests := []struct {
		name    string
		form    any
		wantErr bool
	}{
		{"class size ok", ClassSizeForm{ExpectedClassSize: 30}, false},
		{"class size too small", ClassSizeForm{ExpectedClassSize: MinClassSize - 1}, true},
		{"class size too large", ClassSizeForm{ExpectedClassSize: MaxClassSize + 1}, true},
		{"guest name ok", GuestNameForm{Name: "Jamie"}, false},
		{"guest name too short", GuestNameForm{Name: "J"}, true},
		{"guest bad email", GuestNameForm{Name: "Jamie", Email: "nope"}, true},
		{"poll ok", PollForm{Title: "Best laugh", Type: PollTypeCustom, Options: []PollOptionForm{{Label: "Sam"}}}, false},
		{"poll missing title", PollForm{Type: PollTypeCustom}, true},
		{"poll bad type", PollForm{Title: "x", Type: "quiz"}, true},
		{"poll budget too large", PollForm{Title: "x", Type: PollTypeCustom, MaxVotesPerGuest: 51}, true},
		{"poll empty option label", PollForm{Title: "x", Type: PollTypeCustom, Options: []PollOptionForm{{}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
