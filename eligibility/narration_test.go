// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/tablo-voting/models"
)

func poll(open, multi bool, max int, votes ...int) *models.Poll {
	return &models.Poll{
		ID:               1,
		Title:            "Prom theme",
		IsOpen:           open,
		IsActive:         open,
		IsMultipleChoice: multi,
		MaxVotesPerGuest: max,
		CanVote:          true,
		MyVotes:          votes,
		Options: []models.PollOption{
			{ID: 11, Label: "Under the sea"},
			{ID: 12, Label: "Hollywood"},
		},
	}
}

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0%"},
		{100, "100%"},
		{33.333, "33.3%"},
		{66.66, "66.7%"},
		{12.5, "12.5%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercentage(tt.in))
	}
}

func TestOptionLabel(t *testing.T) {
	pct := 40.0
	withPct := models.PollOption{ID: 12, Label: "Hollywood", Percentage: &pct}

	tests := []struct {
		name       string
		poll       *models.Poll
		opt        models.PollOption
		submitting bool
		want       string
	}{
		{"no poll", nil, models.PollOption{Label: "Gym"}, false, "Gym"},
		{"open unvoted", poll(true, false, 1), models.PollOption{ID: 11, Label: "Under the sea"}, false, "Under the sea, press Enter or Space to select"},
		{"single choice selected", poll(true, false, 1, 11), models.PollOption{ID: 11, Label: "Under the sea"}, false, "Under the sea, selected"},
		{"single choice switch target", poll(true, false, 1, 11), withPct, false, "Hollywood, 40%, press Enter or Space to select"},
		{"multiple choice selected", poll(true, true, 2, 11), models.PollOption{ID: 11, Label: "Under the sea"}, false, "Under the sea, selected, press Enter or Space to deselect"},
		{"multiple choice exhausted", poll(true, true, 1, 11), models.PollOption{ID: 12, Label: "Hollywood"}, false, "Hollywood, you have reached the maximum number of votes"},
		{"closed", poll(false, false, 1, 11), models.PollOption{ID: 11, Label: "Under the sea"}, false, "Under the sea, selected, voting has closed"},
		{"submitting", poll(true, false, 1), models.PollOption{ID: 11, Label: "Under the sea"}, true, "Under the sea"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptionLabel(tt.poll, tt.opt, tt.submitting))
		})
	}
}

func TestPollLabel(t *testing.T) {
	p := *poll(true, false, 1, 11)
	p.TotalVotes = 1234
	assert.Equal(t, "Prom theme, custom poll, open, you have voted, 1,234 votes", PollLabel(p))

	p = *poll(false, false, 1)
	p.Type = models.PollTypeTemplate
	p.TotalVotes = 1
	assert.Equal(t, "Prom theme, template poll, closed, 1 vote", PollLabel(p))
}
