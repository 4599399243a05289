// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/tablo-voting/models"
)

// Narration fragments. Labels must read correctly without colour or icons.
const (
	narrSelected     = "selected"
	narrClosed       = "voting has closed"
	narrLimitReached = "you have reached the maximum number of votes"
	narrToggle       = "press Enter or Space to deselect"
	narrSelect       = "press Enter or Space to select"
	narrVoted        = "you have voted"
)

// FormatPercentage renders a percentage with at most one decimal place.
func FormatPercentage(pct float64) string {
	return decimal.NewFromFloat(pct).Round(1).String() + "%"
}

// OptionLabel describes an option for assistive technology: its label,
// whether it is selected, the live percentage when known, and whether the
// viewer can still act on it.
func OptionLabel(p *models.Poll, opt models.PollOption, submitting bool) string {
	if p == nil {
		return opt.Label
	}

	parts := []string{opt.Label}
	voted := HasVotedFor(p, opt.ID)
	if voted {
		parts = append(parts, narrSelected)
	}
	if opt.Percentage != nil {
		parts = append(parts, FormatPercentage(*opt.Percentage))
	}

	switch {
	case !p.IsOpen:
		parts = append(parts, narrClosed)
	case voted && p.IsMultipleChoice:
		parts = append(parts, narrToggle)
	case CanVoteForOption(p, opt.ID, submitting) || CanSwitchTo(p, opt.ID, submitting):
		parts = append(parts, narrSelect)
	case !voted && Exhausted(p):
		parts = append(parts, narrLimitReached)
	}

	return strings.Join(parts, ", ")
}

// PollLabel summarises a poll card: title, kind, status, whether the viewer
// voted, and the total number of votes.
func PollLabel(p models.Poll) string {
	kind := "custom poll"
	if p.Type == models.PollTypeTemplate {
		kind = "template poll"
	}
	status := "open"
	if !p.IsOpen {
		status = "closed"
	}

	parts := []string{p.Title, kind, status}
	if len(p.MyVotes) > 0 {
		parts = append(parts, narrVoted)
	}
	votes := "votes"
	if p.TotalVotes == 1 {
		votes = "vote"
	}
	parts = append(parts, humanize.Comma(int64(p.TotalVotes))+" "+votes)
	return strings.Join(parts, ", ")
}
