// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package eligibility decides what a participant may do with a poll right
// now. Every function is pure and safe to call with a nil poll.
package eligibility

import (
	"slices"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/models"
)

// Refusal reasons reported by Check.
const (
	ReasonNoPoll        = "poll is not loaded"
	ReasonClosed        = "voting has closed"
	ReasonSubmitting    = "a vote is already being submitted"
	ReasonAlreadyChosen = "option is already selected in a single-choice poll"
	ReasonLimitReached  = "vote limit reached"
)

// VoteLimit returns the vote budget with misconfiguration clamped away.
func VoteLimit(p *models.Poll) int {
	if p == nil || !p.IsMultipleChoice || p.MaxVotesPerGuest < 1 {
		return 1
	}
	return p.MaxVotesPerGuest
}

func HasVotedFor(p *models.Poll, optionID int) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.MyVotes, optionID)
}

// Exhausted reports whether the guest has no votes left to spend.
func Exhausted(p *models.Poll) bool {
	if p == nil {
		return true
	}
	return !p.CanVote || len(p.MyVotes) >= VoteLimit(p)
}

// Check returns nil when the option may be voted for (or deselected under
// multiple choice), otherwise an EligibilityViolation naming the rule.
func Check(p *models.Poll, optionID int, submitting bool) error {
	switch {
	case p == nil:
		return apperr.Ineligible(ReasonNoPoll)
	case !p.IsOpen:
		return apperr.Ineligible(ReasonClosed)
	case submitting:
		return apperr.Ineligible(ReasonSubmitting)
	}

	voted := HasVotedFor(p, optionID)
	if voted && !p.IsMultipleChoice {
		return apperr.Ineligible(ReasonAlreadyChosen)
	}
	if Exhausted(p) && !voted {
		return apperr.Ineligible(ReasonLimitReached)
	}
	return nil
}

func CanVoteForOption(p *models.Poll, optionID int, submitting bool) bool {
	return Check(p, optionID, submitting) == nil
}

// CanSwitchTo reports whether a single-choice selection can move to optionID.
// Callers perform the switch as remove-vote followed by vote.
func CanSwitchTo(p *models.Poll, optionID int, submitting bool) bool {
	if p == nil || !p.IsOpen || submitting || p.IsMultipleChoice {
		return false
	}
	return len(p.MyVotes) > 0 && !HasVotedFor(p, optionID)
}

// ShowResults is a strict OR: moderators always see results; guests see them
// once they voted, when the poll shows them up front, or when it is closed.
func ShowResults(p *models.Poll, hasFullAccess bool) bool {
	if hasFullAccess {
		return true
	}
	if p == nil {
		return false
	}
	return len(p.MyVotes) > 0 || p.ShowResultsBeforeVote || !p.IsOpen
}
