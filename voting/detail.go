// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"log/slog"
	"slices"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/eligibility"
	"github.com/danielhkuo/tablo-voting/guest"
	"github.com/danielhkuo/tablo-voting/metrics"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/store"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

// Messages shown on the poll detail.
const (
	MsgInvalidPollID = "Invalid poll id."
	MsgLimitReached  = "You have reached the maximum number of votes!"
	MsgResultsHidden = "results are visible once you have voted"
)

// DetailController drives the single poll view.
type DetailController struct {
	api     votingapi.API
	guest   *guest.Orchestrator
	detail  *store.PollDetailStore
	list    *store.PollListStore
	metrics *metrics.Metrics
	life    *lifetime
}

// OptionView is one option with everything the UI needs to render it.
type OptionView struct {
	models.PollOption
	Selected  bool   `json:"selected"`
	CanSelect bool   `json:"canSelect"`
	Label     string `json:"ariaLabel"`
}

// DetailView is the detail snapshot with its derived values.
type DetailView struct {
	store.PollDetailState
	ShowResults bool         `json:"showResults"`
	Options     []OptionView `json:"options"`
	VoteLimit   int          `json:"voteLimit"`
}

func (c *DetailController) Store() *store.PollDetailStore { return c.detail }

func (c *DetailController) View() DetailView {
	st := c.detail.Get()
	v := DetailView{
		PollDetailState: st,
		ShowResults:     st.ShowResults(),
		Options:         []OptionView{},
		VoteLimit:       eligibility.VoteLimit(st.Poll),
	}
	if !st.HasPoll() {
		return v
	}
	for _, opt := range st.Poll.Options {
		if !v.ShowResults {
			opt.VotesCount = nil
			opt.Percentage = nil
		}
		v.Options = append(v.Options, OptionView{
			PollOption: opt,
			Selected:   st.HasVotedFor(opt.ID),
			CanSelect:  st.CanVoteForOption(opt.ID) || eligibility.CanSwitchTo(st.Poll, opt.ID, st.Voting),
			Label:      st.OptionLabel(opt),
		})
	}
	return v
}

// Load fetches one poll with its options.
func (c *DetailController) Load(ctx context.Context, id int) error {
	if err := c.life.check(); err != nil {
		return err
	}
	if id < 1 {
		c.detail.SetError(MsgInvalidPollID)
		return apperr.Validation("id", MsgInvalidPollID)
	}

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	c.detail.StartLoading()
	poll, err := c.api.GetPoll(ctx, id)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", id, "error", err)
		c.metrics.RemoteFailure("get_poll")
		c.detail.LoadingError(apperr.Message(err))
		return err
	}
	c.detail.FinishLoading(poll)
	return nil
}

// ensure loads poll id unless it is already the one on screen.
func (c *DetailController) ensure(ctx context.Context, id int) error {
	if p := c.detail.Get().Poll; p != nil && p.ID == id {
		return nil
	}
	return c.Load(ctx, id)
}

// SelectOption is a click on one option. Depending on the current vote set
// it casts a vote, withdraws one (multiple choice only) or moves a
// single-choice vote. The vote set changes on screen before the remote call
// and is rolled back if the call fails.
func (c *DetailController) SelectOption(ctx context.Context, pollID, optionID int) error {
	if err := c.life.check(); err != nil {
		return err
	}
	if err := c.ensure(ctx, pollID); err != nil {
		return err
	}

	st := c.detail.Get()
	p := st.Poll
	if !st.IsOpen() {
		return eligibility.Check(p, optionID, st.Voting)
	}
	if !slices.ContainsFunc(p.Options, func(o models.PollOption) bool { return o.ID == optionID }) && len(p.Options) > 0 {
		return apperr.Validation("optionId", "option does not belong to this poll")
	}
	if err := c.guest.RequireRegistration(); err != nil {
		return err
	}

	switch {
	case st.HasVotedFor(optionID) && st.IsMultipleChoice():
		next := slices.DeleteFunc(slices.Clone(p.MyVotes), func(id int) bool { return id == optionID })
		return c.remove(ctx, p.ID, optionID, next)
	case eligibility.CanSwitchTo(p, optionID, st.Voting):
		return c.switchTo(ctx, p.ID, optionID)
	}

	if err := eligibility.Check(p, optionID, st.Voting); err != nil {
		if eligibility.Exhausted(p) && len(p.MyVotes) > 0 && !eligibility.HasVotedFor(p, optionID) {
			c.detail.SetError(MsgLimitReached)
		}
		return err
	}
	return c.vote(ctx, p.ID, optionID, append(slices.Clone(p.MyVotes), optionID))
}

func (c *DetailController) vote(ctx context.Context, pollID, optionID int, next []int) error {
	rollback, ok := c.detail.OptimisticVote(next)
	if !ok {
		return apperr.Ineligible(eligibility.ReasonSubmitting)
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	res, err := c.api.Vote(ctx, pollID, optionID)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to vote", "poll_id", pollID, "option_id", optionID, "error", err)
		c.metrics.RemoteFailure("vote")
		rollback(apperr.Message(err))
		return err
	}
	c.commit(pollID, res)
	c.metrics.Vote(metrics.ActionVote)
	return c.refresh(ctx, pollID)
}

func (c *DetailController) remove(ctx context.Context, pollID, optionID int, next []int) error {
	rollback, ok := c.detail.OptimisticVote(next)
	if !ok {
		return apperr.Ineligible(eligibility.ReasonSubmitting)
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	res, err := c.api.RemoveVote(ctx, pollID, &optionID)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to remove vote", "poll_id", pollID, "option_id", optionID, "error", err)
		c.metrics.RemoteFailure("remove_vote")
		rollback(apperr.Message(err))
		return err
	}
	c.commit(pollID, res)
	c.metrics.Vote(metrics.ActionRemove)
	return c.refresh(ctx, pollID)
}

// switchTo moves a single-choice vote: every vote is withdrawn, then the new
// option is voted for.
func (c *DetailController) switchTo(ctx context.Context, pollID, optionID int) error {
	rollback, ok := c.detail.OptimisticVote([]int{optionID})
	if !ok {
		return apperr.Ineligible(eligibility.ReasonSubmitting)
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	removed, err := c.api.RemoveVote(ctx, pollID, nil)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to withdraw vote before switching", "poll_id", pollID, "error", err)
		c.metrics.RemoteFailure("remove_vote")
		rollback(apperr.Message(err))
		return err
	}

	res, err := c.api.Vote(ctx, pollID, optionID)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		// The old vote is already gone on the server
		slog.Error("failed to vote after withdrawing", "poll_id", pollID, "option_id", optionID, "error", err)
		c.metrics.RemoteFailure("vote")
		c.detail.VoteFailed(apperr.Message(err), removed)
		c.list.ApplyVoteResult(pollID, removed)
		return err
	}
	c.commit(pollID, res)
	c.metrics.Vote(metrics.ActionSwitch)
	return c.refresh(ctx, pollID)
}

// commit applies the server's vote result to both stores.
func (c *DetailController) commit(pollID int, res models.VoteResult) {
	c.detail.VoteSuccess(res)
	c.list.ApplyVoteResult(pollID, res)
}

// refresh re-reads the poll after a vote so counts and the vote budget come
// from the server. A failed read keeps the committed vote and is only logged.
func (c *DetailController) refresh(ctx context.Context, pollID int) error {
	poll, err := c.api.GetPoll(ctx, pollID)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Warn("failed to refresh poll after vote", "poll_id", pollID, "error", err)
		c.metrics.RemoteFailure("get_poll")
		return nil
	}
	c.detail.Refresh(poll)
	c.list.RefreshPoll(poll)
	return nil
}

// DismissMessages clears the error and success banners.
func (c *DetailController) DismissMessages() {
	c.detail.ClearError()
	c.detail.ClearSuccess()
}

// Results returns the poll results when the viewer may see them.
func (c *DetailController) Results(ctx context.Context, pollID int) (models.PollResults, error) {
	if err := c.life.check(); err != nil {
		return models.PollResults{}, err
	}
	if err := c.ensure(ctx, pollID); err != nil {
		return models.PollResults{}, err
	}
	if !c.detail.Get().ShowResults() {
		return models.PollResults{}, apperr.Ineligible(MsgResultsHidden)
	}

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	res, err := c.api.GetResults(ctx, pollID)
	if c.life.closed() {
		return models.PollResults{}, apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to load results", "poll_id", pollID, "error", err)
		c.metrics.RemoteFailure("get_results")
		c.detail.SetError(apperr.Message(err))
		return models.PollResults{}, err
	}
	return res, nil
}
