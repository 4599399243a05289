// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package votingapi is the client side of the remote, tenant-scoped voting
// API. Every mutating call returns enough data to patch local state without
// a full re-fetch.
package votingapi

import (
	"context"
	"io"
	"time"

	"github.com/danielhkuo/tablo-voting/models"
)

// Upload is one media file attached to a poll.
type Upload struct {
	FileName string
	Content  io.Reader
}

// API is the remote voting collaborator.
type API interface {
	ListPolls(ctx context.Context, activeOnly bool) ([]models.Poll, error)
	GetPoll(ctx context.Context, id int) (models.Poll, error)
	GetResults(ctx context.Context, id int) (models.PollResults, error)
	Vote(ctx context.Context, id, optionID int) (models.VoteResult, error)
	// RemoveVote withdraws one vote, or every vote when optionID is nil.
	RemoveVote(ctx context.Context, id int, optionID *int) (models.VoteResult, error)
	CreatePoll(ctx context.Context, form models.PollForm, media []Upload) (models.Poll, error)
	UpdatePoll(ctx context.Context, id int, form models.PollForm, media []Upload) error
	DeletePoll(ctx context.Context, id int) error
	ClosePoll(ctx context.Context, id int) error
	ReopenPoll(ctx context.Context, id int, closeAt *time.Time) error
	ListParticipants(ctx context.Context) (models.ParticipantList, error)
	ToggleParticipantExtra(ctx context.Context, guestID int) (models.ToggleExtraResult, error)
	RegisterGuest(ctx context.Context, name string, email *string) (models.GuestSession, error)
	SetExpectedClassSize(ctx context.Context, size int) (int, error)
}

// SessionSource supplies the guest session token sent with each request.
type SessionSource interface {
	SessionToken() string
}

// SessionFunc adapts a plain function to SessionSource.
type SessionFunc func() string

func (f SessionFunc) SessionToken() string { return f() }
