// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"
)

// MapPoll converts a wire poll into the domain shape. Single-choice polls and
// non-positive budgets allow exactly one vote. my_votes is cut to the budget.
func MapPoll(p APIPoll) Poll {
	poll := Poll{
		ID:                    p.ID,
		Title:                 p.Title,
		CoverImageURL:         p.CoverImageURL,
		Media:                 make([]PollMedia, 0, len(p.Media)),
		Type:                  PollType(p.Type),
		IsActive:              p.IsActive,
		IsOpen:                p.IsOpen,
		IsMultipleChoice:      p.IsMultipleChoice,
		MaxVotesPerGuest:      p.MaxVotesPerGuest,
		ShowResultsBeforeVote: p.ShowResultsBeforeVote,
		UseForFinalization:    p.UseForFinalization,
		CloseAt:               parseTime(p.CloseAt),
		CanVote:               p.CanVote,
		MyVotes:               uniqueIDs(p.MyVotes),
		TotalVotes:            p.TotalVotes,
		UniqueVoters:          p.UniqueVoters,
		OptionsCount:          p.OptionsCount,
		ParticipationRate:     p.ParticipationRate,
	}
	if p.Description != nil {
		poll.Description = *p.Description
	}
	if !poll.IsMultipleChoice || poll.MaxVotesPerGuest < 1 {
		poll.MaxVotesPerGuest = 1
	}
	if len(poll.MyVotes) > poll.MaxVotesPerGuest {
		poll.MyVotes = poll.MyVotes[:poll.MaxVotesPerGuest]
	}
	if t := parseTime(&p.CreatedAt); t != nil {
		poll.CreatedAt = *t
	}
	for _, m := range p.Media {
		poll.Media = append(poll.Media, PollMedia(m))
	}
	if p.Options != nil {
		poll.Options = make([]PollOption, 0, len(p.Options))
		for _, o := range p.Options {
			poll.Options = append(poll.Options, MapOption(o))
		}
	}
	return poll
}

func MapPolls(in []APIPoll) []Poll {
	out := make([]Poll, 0, len(in))
	for _, p := range in {
		out = append(out, MapPoll(p))
	}
	return out
}

func MapOption(o APIPollOption) PollOption {
	return PollOption{
		ID:           o.ID,
		Label:        o.Label,
		Description:  o.Description,
		ImageURL:     o.ImageURL,
		TemplateID:   o.TemplateID,
		TemplateName: o.TemplateName,
		VotesCount:   o.VotesCount,
		Percentage:   o.Percentage,
	}
}

// MapResults fills in zero result fields so every option carries a count and
// a percentage.
func MapResults(r APIResults) PollResults {
	res := PollResults{
		PollID:            r.Poll.ID,
		Title:             r.Poll.Title,
		IsOpen:            r.Poll.IsOpen,
		TotalVotes:        r.TotalVotes,
		UniqueVoters:      r.UniqueVoters,
		ParticipationRate: r.ParticipationRate,
		Options:           make([]PollOption, 0, len(r.Options)),
	}
	for _, o := range r.Options {
		opt := MapOption(o)
		if opt.VotesCount == nil {
			zero := 0
			opt.VotesCount = &zero
		}
		if opt.Percentage == nil {
			zero := 0.0
			opt.Percentage = &zero
		}
		res.Options = append(res.Options, opt)
	}
	return res
}

// MapVote converts a vote or remove-vote response. A response without data
// yields a nil MyVotes so callers keep the vote set they already show.
func MapVote(v *APIVote, message string) VoteResult {
	if v == nil {
		return VoteResult{Message: message}
	}
	return VoteResult{
		Message:     message,
		MyVotes:     uniqueIDs(v.MyVotes),
		CanVoteMore: v.CanVoteMore,
	}
}

func MapParticipant(p APIParticipant) Participant {
	return Participant{
		ID:             p.ID,
		GuestName:      p.GuestName,
		GuestEmail:     p.GuestEmail,
		IsBanned:       p.IsBanned,
		IsExtra:        p.IsExtra,
		LastActivityAt: parseTime(p.LastActivityAt),
		VotesCount:     p.VotesCount,
	}
}

func MapParticipants(r APIParticipants) ParticipantList {
	list := ParticipantList{
		Participants: make([]Participant, 0, len(r.Participants)),
		Statistics: ParticipantStatistics{
			TotalCount:        r.Statistics.Total,
			ActiveCount:       r.Statistics.Active,
			BannedCount:       r.Statistics.Banned,
			ExtraCount:        r.Statistics.Extra,
			RegularCount:      r.Statistics.Regular,
			Active24h:         r.Statistics.Active24h,
			ExpectedClassSize: r.Statistics.ExpectedClassSize,
			ParticipationRate: r.Statistics.ParticipationRate,
		},
		CurrentGuestID: r.CurrentGuestID,
	}
	for _, p := range r.Participants {
		list.Participants = append(list.Participants, MapParticipant(p))
	}
	return list
}

func MapGuestSession(projectID int, s APIGuestSession) GuestSession {
	return GuestSession{
		ProjectID:  projectID,
		Token:      s.SessionToken,
		GuestID:    s.ID,
		GuestName:  s.GuestName,
		GuestEmail: s.GuestEmail,
	}
}

// FormatTime renders t the way the remote API expects timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

// uniqueIDs drops duplicates while keeping first-seen order. Never returns nil
// so JSON snapshots render [] instead of null.
func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
