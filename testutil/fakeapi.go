// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/eligibility"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

// FakeAPI is an in-memory votingapi.API. It enforces the same vote rules as
// the remote API so tests can rely on the vote sets it returns.
type FakeAPI struct {
	mu sync.Mutex

	Polls        []models.Poll
	Participants models.ParticipantList
	ClassSize    int
	Registered   []string

	// Errors makes the named operation fail, e.g. Errors["Vote"].
	Errors map[string]error
	// Gate, when set, holds every call until it is closed or ctx is done.
	Gate chan struct{}

	calls  map[string]int
	nextID int
}

var _ votingapi.API = (*FakeAPI)(nil)

func NewFakeAPI(polls ...models.Poll) *FakeAPI {
	return &FakeAPI{
		Polls:        append([]models.Poll{}, polls...),
		Participants: models.ParticipantList{Participants: []models.Participant{}},
		Errors:       map[string]error{},
		calls:        map[string]int{},
		nextID:       1000,
	}
}

// Fail makes op return err until cleared with Fail(op, nil).
func (f *FakeAPI) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Errors, op)
		return
	}
	f.Errors[op] = err
}

// Calls returns how many times op was invoked.
func (f *FakeAPI) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeAPI) Poll(id int) (models.Poll, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return models.Poll{}, false
	}
	return f.Polls[i], true
}

// enter records the call, waits on the gate and returns the injected error.
// It returns with f.mu held when the error is nil.
func (f *FakeAPI) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	if err := f.Errors[op]; err != nil {
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *FakeAPI) index(id int) int {
	return slices.IndexFunc(f.Polls, func(p models.Poll) bool { return p.ID == id })
}

func notFound() error {
	return &apperr.RemoteFailure{Status: http.StatusNotFound, Message: "Poll not found."}
}

func (f *FakeAPI) ListPolls(ctx context.Context, activeOnly bool) ([]models.Poll, error) {
	if err := f.enter(ctx, "ListPolls"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	out := []models.Poll{}
	for _, p := range f.Polls {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p.WithMyVotes(p.MyVotes))
	}
	return out, nil
}

func (f *FakeAPI) GetPoll(ctx context.Context, id int) (models.Poll, error) {
	if err := f.enter(ctx, "GetPoll"); err != nil {
		return models.Poll{}, err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.Poll{}, notFound()
	}
	return tally(f.Polls[i].WithMyVotes(f.Polls[i].MyVotes)), nil
}

func (f *FakeAPI) GetResults(ctx context.Context, id int) (models.PollResults, error) {
	if err := f.enter(ctx, "GetResults"); err != nil {
		return models.PollResults{}, err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.PollResults{}, notFound()
	}
	p := f.Polls[i]
	res := models.PollResults{
		PollID:       p.ID,
		Title:        p.Title,
		IsOpen:       p.IsOpen,
		TotalVotes:   len(p.MyVotes),
		UniqueVoters: min(len(p.MyVotes), 1),
		Options:      tally(p).Options,
	}
	return res, nil
}

// tally fills option counts from the single guest's vote set.
func tally(p models.Poll) models.Poll {
	opts := make([]models.PollOption, 0, len(p.Options))
	for _, o := range p.Options {
		count := 0
		if slices.Contains(p.MyVotes, o.ID) {
			count = 1
		}
		pct := 0.0
		if len(p.MyVotes) > 0 {
			pct = float64(count) / float64(len(p.MyVotes)) * 100
		}
		o.VotesCount = &count
		o.Percentage = &pct
		opts = append(opts, o)
	}
	p.Options = opts
	return p
}

func (f *FakeAPI) Vote(ctx context.Context, id, optionID int) (models.VoteResult, error) {
	if err := f.enter(ctx, "Vote"); err != nil {
		return models.VoteResult{}, err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.VoteResult{}, notFound()
	}
	p := &f.Polls[i]
	if err := eligibility.Check(p, optionID, false); err != nil {
		return models.VoteResult{}, &apperr.RemoteFailure{Status: http.StatusUnprocessableEntity, Message: apperr.Message(err)}
	}
	p.MyVotes = append(slices.Clone(p.MyVotes), optionID)
	p.TotalVotes++
	p.CanVote = len(p.MyVotes) < eligibility.VoteLimit(p)
	return models.VoteResult{Message: "Vote recorded.", MyVotes: slices.Clone(p.MyVotes), CanVoteMore: p.CanVote}, nil
}

func (f *FakeAPI) RemoveVote(ctx context.Context, id int, optionID *int) (models.VoteResult, error) {
	if err := f.enter(ctx, "RemoveVote"); err != nil {
		return models.VoteResult{}, err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.VoteResult{}, notFound()
	}
	p := &f.Polls[i]
	before := len(p.MyVotes)
	if optionID == nil {
		p.MyVotes = []int{}
	} else {
		p.MyVotes = slices.DeleteFunc(slices.Clone(p.MyVotes), func(v int) bool { return v == *optionID })
	}
	p.TotalVotes -= before - len(p.MyVotes)
	p.CanVote = true
	return models.VoteResult{Message: "Vote removed.", MyVotes: slices.Clone(p.MyVotes), CanVoteMore: true}, nil
}

func (f *FakeAPI) CreatePoll(ctx context.Context, form models.PollForm, media []votingapi.Upload) (models.Poll, error) {
	if err := f.enter(ctx, "CreatePoll"); err != nil {
		return models.Poll{}, err
	}
	defer f.mu.Unlock()

	f.nextID++
	p := models.Poll{
		ID:                    f.nextID,
		Title:                 form.Title,
		Description:           form.Description,
		Media:                 []models.PollMedia{},
		Type:                  form.Type,
		IsActive:              true,
		IsOpen:                true,
		IsMultipleChoice:      form.IsMultipleChoice,
		MaxVotesPerGuest:      max(form.MaxVotesPerGuest, 1),
		ShowResultsBeforeVote: form.ShowResultsBeforeVote,
		CloseAt:               form.CloseAt,
		CanVote:               true,
		MyVotes:               []int{},
		CreatedAt:             time.Now().UTC(),
	}
	for i, o := range form.Options {
		p.Options = append(p.Options, models.PollOption{ID: p.ID*10 + i + 1, Label: o.Label})
	}
	for i, m := range media {
		p.Media = append(p.Media, models.PollMedia{ID: p.ID*10 + i + 1, FileName: m.FileName, SortOrder: i})
	}
	p.OptionsCount = len(p.Options)
	f.Polls = append(f.Polls, p)
	return p, nil
}

func (f *FakeAPI) UpdatePoll(ctx context.Context, id int, form models.PollForm, media []votingapi.Upload) error {
	if err := f.enter(ctx, "UpdatePoll"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	p := &f.Polls[i]
	p.Title = form.Title
	p.Description = form.Description
	p.IsMultipleChoice = form.IsMultipleChoice
	p.MaxVotesPerGuest = max(form.MaxVotesPerGuest, 1)
	p.ShowResultsBeforeVote = form.ShowResultsBeforeVote
	p.CloseAt = form.CloseAt
	return nil
}

func (f *FakeAPI) DeletePoll(ctx context.Context, id int) error {
	if err := f.enter(ctx, "DeletePoll"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	f.Polls = slices.Delete(f.Polls, i, i+1)
	return nil
}

func (f *FakeAPI) ClosePoll(ctx context.Context, id int) error {
	if err := f.enter(ctx, "ClosePoll"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	f.Polls[i].IsOpen = false
	f.Polls[i].IsActive = false
	return nil
}

func (f *FakeAPI) ReopenPoll(ctx context.Context, id int, closeAt *time.Time) error {
	if err := f.enter(ctx, "ReopenPoll"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	f.Polls[i].IsOpen = true
	f.Polls[i].IsActive = true
	f.Polls[i].CloseAt = closeAt
	return nil
}

func (f *FakeAPI) ListParticipants(ctx context.Context) (models.ParticipantList, error) {
	if err := f.enter(ctx, "ListParticipants"); err != nil {
		return models.ParticipantList{}, err
	}
	defer f.mu.Unlock()

	out := f.Participants
	out.Participants = slices.Clone(f.Participants.Participants)
	return out, nil
}

func (f *FakeAPI) ToggleParticipantExtra(ctx context.Context, guestID int) (models.ToggleExtraResult, error) {
	if err := f.enter(ctx, "ToggleParticipantExtra"); err != nil {
		return models.ToggleExtraResult{}, err
	}
	defer f.mu.Unlock()

	ps := f.Participants.Participants
	i := slices.IndexFunc(ps, func(p models.Participant) bool { return p.ID == guestID })
	if i < 0 {
		return models.ToggleExtraResult{}, &apperr.RemoteFailure{Status: http.StatusNotFound, Message: "Guest not found."}
	}
	ps[i].IsExtra = !ps[i].IsExtra
	return models.ToggleExtraResult{IsExtra: ps[i].IsExtra}, nil
}

func (f *FakeAPI) RegisterGuest(ctx context.Context, name string, email *string) (models.GuestSession, error) {
	if err := f.enter(ctx, "RegisterGuest"); err != nil {
		return models.GuestSession{}, err
	}
	defer f.mu.Unlock()

	f.Registered = append(f.Registered, name)
	return models.GuestSession{
		Token:      "guest-session-" + name,
		GuestID:    len(f.Registered),
		GuestName:  name,
		GuestEmail: email,
	}, nil
}

func (f *FakeAPI) SetExpectedClassSize(ctx context.Context, size int) (int, error) {
	if err := f.enter(ctx, "SetExpectedClassSize"); err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	f.ClassSize = size
	return size, nil
}

// MemorySessions is an in-memory guest.SessionStore.
type MemorySessions struct {
	mu      sync.Mutex
	Session *models.GuestSession
	LoadErr error
}

func (m *MemorySessions) HasRegisteredSession(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return false, m.LoadErr
	}
	return m.Session != nil, nil
}

func (m *MemorySessions) Save(ctx context.Context, gs models.GuestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = &gs
	return nil
}

func (m *MemorySessions) SessionToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Session == nil {
		return ""
	}
	return m.Session.Token
}
