// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"github.com/danielhkuo/tablo-voting/eligibility"
	"github.com/danielhkuo/tablo-voting/models"
)

// PollDetailState is one snapshot of a single poll's view.
type PollDetailState struct {
	Loading    bool         `json:"loading"`
	Voting     bool         `json:"voting"`
	Poll       *models.Poll `json:"poll,omitempty"`
	Error      string       `json:"error,omitempty"`
	Success    string       `json:"success,omitempty"`
	FullAccess bool         `json:"fullAccess"`
}

func (s PollDetailState) HasPoll() bool {
	return s.Poll != nil
}

func (s PollDetailState) IsOpen() bool {
	return s.Poll != nil && s.Poll.IsOpen
}

func (s PollDetailState) IsMultipleChoice() bool {
	return s.Poll != nil && s.Poll.IsMultipleChoice
}

func (s PollDetailState) ShowResults() bool {
	if s.Poll == nil {
		return false
	}
	return eligibility.ShowResults(s.Poll, s.FullAccess)
}

func (s PollDetailState) HasVotedFor(optionID int) bool {
	return eligibility.HasVotedFor(s.Poll, optionID)
}

func (s PollDetailState) CanVoteForOption(optionID int) bool {
	return eligibility.CanVoteForOption(s.Poll, optionID, s.Voting)
}

func (s PollDetailState) OptionLabel(opt models.PollOption) string {
	return eligibility.OptionLabel(s.Poll, opt, s.Voting)
}

// PollDetailStore holds one poll plus transient view flags.
type PollDetailStore struct {
	obs *Observable[PollDetailState]
}

func NewPollDetailStore() *PollDetailStore {
	return &PollDetailStore{obs: NewObservable(PollDetailState{Loading: true})}
}

func (s *PollDetailStore) Get() PollDetailState {
	return s.obs.Get()
}

func (s *PollDetailStore) Subscribe(fn func(PollDetailState)) func() {
	return s.obs.Subscribe(fn)
}

func (s *PollDetailStore) SetFullAccess(full bool) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.FullAccess = full
		return st, true
	})
}

func (s *PollDetailStore) StartLoading() {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Loading = true
		st.Error = ""
		return st, true
	})
}

func (s *PollDetailStore) FinishLoading(p models.Poll) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Poll = &p
		st.Loading = false
		return st, true
	})
}

func (s *PollDetailStore) LoadingError(msg string) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Loading = false
		st.Error = msg
		return st, true
	})
}

// StartVoting clears both the previous error and the previous success
// message. It reports false when a vote is already in flight.
func (s *PollDetailStore) StartVoting() bool {
	_, ok := s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		if st.Voting {
			return st, false
		}
		st.Voting = true
		st.Error = ""
		st.Success = ""
		return st, true
	})
	return ok
}

// VoteSuccess ends the submission and applies the server's vote result in
// one update. Option counts are dropped until the poll is refreshed. A result
// without a vote set keeps the one on screen.
func (s *PollDetailStore) VoteSuccess(res models.VoteResult) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Voting = false
		st.Success = res.Message
		if st.Poll != nil {
			p := st.Poll.WithVoteResult(res).WithoutResults()
			st.Poll = &p
		}
		return st, true
	})
}

func (s *PollDetailStore) VoteError(msg string) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Voting = false
		st.Error = msg
		return st, true
	})
}

// VoteFailed ends the submission with an error while still applying the
// vote result the server last confirmed.
func (s *PollDetailStore) VoteFailed(msg string, res models.VoteResult) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Voting = false
		st.Error = msg
		if st.Poll != nil {
			p := st.Poll.WithVoteResult(res).WithoutResults()
			st.Poll = &p
		}
		return st, true
	})
}

// Refresh swaps in a freshly fetched copy of the poll on screen. It is a
// no-op while a vote is in flight or when another poll has been loaded.
func (s *PollDetailStore) Refresh(p models.Poll) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		if st.Voting || st.Poll == nil || st.Poll.ID != p.ID {
			return st, false
		}
		st.Poll = &p
		return st, true
	})
}

// OptimisticVote starts a submission and shows next as the vote set before
// the remote call returns. The rollback restores the previous set and
// records msg as the error, both in a single update. ok is false when a vote
// is already in flight or no poll is loaded.
func (s *PollDetailStore) OptimisticVote(next []int) (rollback func(msg string), ok bool) {
	var prev []int
	var pollID int
	_, ok = s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		if st.Voting || st.Poll == nil {
			return st, false
		}
		prev = st.Poll.MyVotes
		pollID = st.Poll.ID
		p := st.Poll.WithMyVotes(next)
		st.Poll = &p
		st.Voting = true
		st.Error = ""
		st.Success = ""
		return st, true
	})
	if !ok {
		return func(string) {}, false
	}

	return func(msg string) {
		s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
			st.Voting = false
			st.Error = msg
			// A reload of another poll in the meantime owns the snapshot
			if st.Poll != nil && st.Poll.ID == pollID {
				p := st.Poll.WithMyVotes(prev)
				st.Poll = &p
			}
			return st, true
		})
	}, true
}

func (s *PollDetailStore) SetError(msg string) {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		st.Error = msg
		return st, true
	})
}

func (s *PollDetailStore) ClearError() {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		if st.Error == "" {
			return st, false
		}
		st.Error = ""
		return st, true
	})
}

func (s *PollDetailStore) ClearSuccess() {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		if st.Success == "" {
			return st, false
		}
		st.Success = ""
		return st, true
	})
}

// Reset keeps the viewer's access level; everything else returns to the
// initial snapshot.
func (s *PollDetailStore) Reset() {
	s.obs.Update(func(st PollDetailState) (PollDetailState, bool) {
		return PollDetailState{Loading: true, FullAccess: st.FullAccess}, true
	})
}
