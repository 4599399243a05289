// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"slices"
	"time"

	"github.com/danielhkuo/tablo-voting/dialog"
	"github.com/danielhkuo/tablo-voting/models"
)

// PollListState is one snapshot of the poll list feature.
type PollListState struct {
	Loading    bool            `json:"loading"`
	Submitting bool            `json:"submitting"`
	Polls      []models.Poll   `json:"polls"`
	Project    *models.Project `json:"project,omitempty"`
	Error      string          `json:"error,omitempty"`
	Success    string          `json:"success,omitempty"`

	EditDialog   dialog.State `json:"editDialog"`
	EditTarget   *models.Poll `json:"editTarget,omitempty"`
	DeleteDialog dialog.State `json:"deleteDialog"`
	DeleteTarget *models.Poll `json:"deleteTarget,omitempty"`
}

// Derived values. They are recomputed from the snapshot on every call.

func (s PollListState) ActivePolls() []models.Poll {
	out := []models.Poll{}
	for _, p := range s.Polls {
		if p.IsOpen {
			out = append(out, p)
		}
	}
	return out
}

func (s PollListState) ClosedPolls() []models.Poll {
	out := []models.Poll{}
	for _, p := range s.Polls {
		if !p.IsOpen {
			out = append(out, p)
		}
	}
	return out
}

func (s PollListState) ActiveCount() int {
	n := 0
	for _, p := range s.Polls {
		if p.IsOpen {
			n++
		}
	}
	return n
}

func (s PollListState) HasPolls() bool {
	return len(s.Polls) > 0
}

// NeedsClassSizeForFirstPoll is true while the tenant has no polls and no
// expected class size.
func (s PollListState) NeedsClassSizeForFirstPoll() bool {
	noSize := s.Project == nil || s.Project.ExpectedClassSize == nil || *s.Project.ExpectedClassSize == 0
	return noSize && !s.HasPolls()
}

func (s PollListState) Poll(id int) (models.Poll, bool) {
	i := slices.IndexFunc(s.Polls, func(p models.Poll) bool { return p.ID == id })
	if i < 0 {
		return models.Poll{}, false
	}
	return s.Polls[i], true
}

func initialPollList() PollListState {
	return PollListState{
		Loading:      true,
		Polls:        []models.Poll{},
		EditDialog:   dialog.Closed(),
		DeleteDialog: dialog.Closed(),
	}
}

// PollListStore holds the fetched poll collection. It changes only through
// the transition methods below.
type PollListStore struct {
	obs *Observable[PollListState]
}

func NewPollListStore() *PollListStore {
	return &PollListStore{obs: NewObservable(initialPollList())}
}

func (s *PollListStore) Get() PollListState {
	return s.obs.Get()
}

func (s *PollListStore) Subscribe(fn func(PollListState)) func() {
	return s.obs.Subscribe(fn)
}

// StartLoading clears any previous error.
func (s *PollListStore) StartLoading() {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Loading = true
		st.Error = ""
		return st, true
	})
}

func (s *PollListStore) FinishLoading(polls []models.Poll) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Polls = append([]models.Poll{}, polls...)
		st.Loading = false
		return st, true
	})
}

func (s *PollListStore) LoadingError(msg string) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Loading = false
		st.Error = msg
		return st, true
	})
}

// StartVoting marks a mutating call in flight. It reports false when one is
// already running.
func (s *PollListStore) StartVoting() bool {
	_, ok := s.obs.Update(func(st PollListState) (PollListState, bool) {
		if st.Submitting {
			return st, false
		}
		st.Submitting = true
		st.Error = ""
		st.Success = ""
		return st, true
	})
	return ok
}

func (s *PollListStore) VoteSuccess(msg string) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Submitting = false
		st.Success = msg
		return st, true
	})
}

func (s *PollListStore) VoteError(msg string) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Submitting = false
		st.Error = msg
		return st, true
	})
}

func (s *PollListStore) SetProject(p *models.Project) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.Project = nil
		if p != nil {
			cp := *p
			st.Project = &cp
		}
		return st, true
	})
}

// SetExpectedClassSize records a class size accepted by the remote API.
func (s *PollListStore) SetExpectedClassSize(size int) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		proj := models.Project{}
		if st.Project != nil {
			proj = *st.Project
		}
		proj.ExpectedClassSize = &size
		st.Project = &proj
		return st, true
	})
}

// ApplyVoteResult patches one poll with the server's vote result.
func (s *PollListStore) ApplyVoteResult(pollID int, res models.VoteResult) {
	if res.MyVotes == nil {
		return
	}
	s.patch(pollID, func(p models.Poll) models.Poll {
		return p.WithVoteResult(res)
	})
}

// RefreshPoll copies the vote state and totals of a freshly fetched poll
// into its card.
func (s *PollListStore) RefreshPoll(fresh models.Poll) {
	s.patch(fresh.ID, func(p models.Poll) models.Poll {
		p = p.WithMyVotes(fresh.MyVotes)
		p.CanVote = fresh.CanVote
		p.IsOpen = fresh.IsOpen
		p.TotalVotes = fresh.TotalVotes
		p.UniqueVoters = fresh.UniqueVoters
		p.ParticipationRate = fresh.ParticipationRate
		return p
	})
}

func (s *PollListStore) MarkClosed(pollID int) {
	s.patch(pollID, func(p models.Poll) models.Poll {
		p.IsActive = false
		p.IsOpen = false
		return p
	})
}

func (s *PollListStore) MarkReopened(pollID int, closeAt *time.Time) {
	s.patch(pollID, func(p models.Poll) models.Poll {
		p.IsActive = true
		p.IsOpen = true
		p.CloseAt = closeAt
		return p
	})
}

func (s *PollListStore) patch(pollID int, fn func(models.Poll) models.Poll) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		i := slices.IndexFunc(st.Polls, func(p models.Poll) bool { return p.ID == pollID })
		if i < 0 {
			return st, false
		}
		next := slices.Clone(st.Polls)
		next[i] = fn(next[i])
		st.Polls = next
		return st, true
	})
}

// Edit and delete dialogs

func (s *PollListStore) StartEditPoll(p models.Poll) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.EditDialog = st.EditDialog.ClearError().Open()
		st.EditTarget = &p
		return st, true
	})
}

// StartEditSubmit returns the poll being edited, or false when no edit dialog
// is open.
func (s *PollListStore) StartEditSubmit() (models.Poll, bool) {
	var target models.Poll
	_, ok := s.obs.Update(func(st PollListState) (PollListState, bool) {
		if st.EditTarget == nil || st.EditDialog.Status != dialog.StatusOpen {
			return st, false
		}
		target = *st.EditTarget
		st.EditDialog = st.EditDialog.StartSubmit()
		return st, true
	})
	return target, ok
}

func (s *PollListStore) EditSuccess() {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.EditDialog = st.EditDialog.SubmitSuccess()
		st.EditTarget = nil
		return st, true
	})
}

func (s *PollListStore) EditError(msg string) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.EditDialog = st.EditDialog.SubmitError(msg)
		return st, true
	})
}

func (s *PollListStore) CloseEditDialog() {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.EditDialog = st.EditDialog.Close()
		st.EditTarget = nil
		return st, true
	})
}

func (s *PollListStore) StartDeletePoll(p models.Poll) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.DeleteDialog = st.DeleteDialog.ClearError().Open()
		st.DeleteTarget = &p
		return st, true
	})
}

func (s *PollListStore) StartDeleteSubmit() (models.Poll, bool) {
	var target models.Poll
	_, ok := s.obs.Update(func(st PollListState) (PollListState, bool) {
		if st.DeleteTarget == nil || st.DeleteDialog.Status != dialog.StatusOpen {
			return st, false
		}
		target = *st.DeleteTarget
		st.DeleteDialog = st.DeleteDialog.StartSubmit()
		return st, true
	})
	return target, ok
}

// DeleteSuccess closes the dialog and drops the poll in the same update.
func (s *PollListStore) DeleteSuccess(pollID int) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.DeleteDialog = st.DeleteDialog.SubmitSuccess()
		st.DeleteTarget = nil
		st.Polls = slices.DeleteFunc(slices.Clone(st.Polls), func(p models.Poll) bool { return p.ID == pollID })
		return st, true
	})
}

func (s *PollListStore) DeleteError(msg string) {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.DeleteDialog = st.DeleteDialog.SubmitError(msg)
		return st, true
	})
}

func (s *PollListStore) CloseDeleteDialog() {
	s.obs.Update(func(st PollListState) (PollListState, bool) {
		st.DeleteDialog = st.DeleteDialog.Close()
		st.DeleteTarget = nil
		return st, true
	})
}

func (s *PollListStore) Reset() {
	s.obs.Set(initialPollList())
}
