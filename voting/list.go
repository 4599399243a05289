// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/auth"
	"github.com/danielhkuo/tablo-voting/eligibility"
	"github.com/danielhkuo/tablo-voting/flow"
	"github.com/danielhkuo/tablo-voting/guest"
	"github.com/danielhkuo/tablo-voting/metrics"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/roster"
	"github.com/danielhkuo/tablo-voting/store"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

// ReopenPeriod is how long a reopened poll stays open.
const ReopenPeriod = 7 * 24 * time.Hour

const ReasonModeratorOnly = "only the project contact can manage polls"

// Success messages shown on the poll list.
const (
	MsgPollClosed   = "Voting closed."
	MsgPollReopened = "Voting reopened."
)

// ListController drives the poll list feature.
type ListController struct {
	api     votingapi.API
	access  auth.Access
	guest   *guest.Orchestrator
	list    *store.PollListStore
	flow    *flow.Coordinator
	roster  *roster.Roster
	metrics *metrics.Metrics
	life    *lifetime
	now     func() time.Time
}

// PollCard is one poll as the list shows it.
type PollCard struct {
	models.Poll
	Label string `json:"label"`
}

// ListView is the full list snapshot with every derived value.
type ListView struct {
	store.PollListState
	Active         []PollCard    `json:"active"`
	Closed         []PollCard    `json:"closed"`
	ActiveCount    int           `json:"activeCount"`
	NeedsClassSize bool          `json:"needsClassSize"`
	FullAccess     bool          `json:"fullAccess"`
	Flow           flow.Snapshot `json:"flow"`
	Guest          guest.State   `json:"guest"`
}

func (c *ListController) Store() *store.PollListStore { return c.list }
func (c *ListController) Guest() *guest.Orchestrator   { return c.guest }
func (c *ListController) Roster() *roster.Roster       { return c.roster }

// View derives everything from one list snapshot.
func (c *ListController) View() ListView {
	st := c.list.Get()
	return ListView{
		PollListState:  st,
		Active:         cards(st.ActivePolls()),
		Closed:         cards(st.ClosedPolls()),
		ActiveCount:    st.ActiveCount(),
		NeedsClassSize: st.NeedsClassSizeForFirstPoll(),
		FullAccess:     c.access.HasFullAccess(),
		Flow:           c.flow.Snapshot(),
		Guest:          c.guest.State(),
	}
}

func cards(polls []models.Poll) []PollCard {
	out := make([]PollCard, 0, len(polls))
	for _, p := range polls {
		out = append(out, PollCard{Poll: p, Label: eligibility.PollLabel(p)})
	}
	return out
}

// Init activates the feature: it publishes the project, settles the guest
// identity and loads polls unless the name dialog has to be answered first.
func (c *ListController) Init(ctx context.Context) (guest.Outcome, error) {
	if err := c.life.check(); err != nil {
		return guest.Outcome{}, err
	}
	c.list.SetProject(&c.access.Project)

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	outcome, err := c.guest.Activate(ctx)
	if err != nil {
		return outcome, c.settle(err)
	}
	if !outcome.CanLoad {
		c.list.FinishLoading(nil)
		return outcome, nil
	}
	return outcome, c.LoadPolls(ctx)
}

// LoadPolls fetches the full poll list.
func (c *ListController) LoadPolls(ctx context.Context) error {
	if err := c.life.check(); err != nil {
		return err
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	c.list.StartLoading()
	polls, err := c.api.ListPolls(ctx, false)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to load polls", "error", err)
		c.metrics.RemoteFailure("list_polls")
		c.list.LoadingError(apperr.Message(err))
		return err
	}
	c.list.FinishLoading(polls)
	return nil
}

// SubmitGuestName registers the viewer from the name dialog and then loads.
func (c *ListController) SubmitGuestName(ctx context.Context, form models.GuestNameForm) error {
	if err := c.life.check(); err != nil {
		return err
	}
	scoped, cancel := c.life.scope(ctx)
	err := c.guest.SubmitName(scoped, form)
	cancel()
	if err != nil {
		return c.settle(err)
	}
	return c.LoadPolls(ctx)
}

// DismissGuest closes the name dialog and loads polls for read-only browsing.
func (c *ListController) DismissGuest(ctx context.Context) error {
	c.guest.Dismiss()
	return c.LoadPolls(ctx)
}

// Creation flow

func (c *ListController) StartCreatePoll() (flow.Snapshot, error) {
	if err := c.requireModerator(); err != nil {
		return c.flow.Snapshot(), err
	}
	return c.flow.StartCreatePoll(c.list.Get().NeedsClassSizeForFirstPoll()), nil
}

func (c *ListController) StartEditClassSize() (flow.Snapshot, error) {
	if err := c.requireModerator(); err != nil {
		return c.flow.Snapshot(), err
	}
	return c.flow.StartEditClassSize(), nil
}

// SubmitClassSize validates and stores the expected class size. When the
// class size step was entered through StartCreatePoll, the create dialog
// opens on success.
func (c *ListController) SubmitClassSize(ctx context.Context, value int) (flow.Snapshot, error) {
	if err := c.life.check(); err != nil {
		return c.flow.Snapshot(), err
	}
	if err := c.flow.SubmitClassSize(value); err != nil {
		return c.flow.Snapshot(), err
	}

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	size, err := c.api.SetExpectedClassSize(ctx, value)
	if c.life.closed() {
		return flow.Snapshot{}, apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to set class size", "error", err, "value", value)
		c.metrics.RemoteFailure("set_class_size")
		return c.flow.ClassSizeError(apperr.Message(err)), err
	}

	c.list.SetExpectedClassSize(size)
	return c.flow.ClassSizeSuccess(), nil
}

func (c *ListController) CancelClassSize() flow.Snapshot {
	return c.flow.CancelClassSize()
}

// SubmitCreate creates a poll from the open create dialog and reloads the
// list.
func (c *ListController) SubmitCreate(ctx context.Context, form models.PollForm, media []votingapi.Upload) (models.Poll, error) {
	if err := c.life.check(); err != nil {
		return models.Poll{}, err
	}
	if err := models.Validate(form); err != nil {
		return models.Poll{}, apperr.FromValidator(err)
	}
	if err := c.flow.StartCreateSubmit(); err != nil {
		return models.Poll{}, err
	}

	scoped, cancel := c.life.scope(ctx)
	poll, err := c.api.CreatePoll(scoped, form, media)
	cancel()
	if c.life.closed() {
		return models.Poll{}, apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		c.metrics.RemoteFailure("create_poll")
		c.flow.CreateError(apperr.Message(err))
		return models.Poll{}, err
	}

	c.flow.CreateSuccess()
	slog.Info("poll created", "poll_id", poll.ID)
	if err := c.LoadPolls(ctx); err != nil && !errors.Is(err, apperr.ErrClosed) {
		slog.Warn("failed to reload polls after create", "error", err)
	}
	return poll, nil
}

func (c *ListController) CancelCreate() flow.Snapshot {
	return c.flow.CancelCreate()
}

// Close and reopen

func (c *ListController) ClosePoll(ctx context.Context, id int) error {
	return c.mutate(ctx, id, "close_poll", MsgPollClosed, func(ctx context.Context) error {
		if err := c.api.ClosePoll(ctx, id); err != nil {
			return err
		}
		c.list.MarkClosed(id)
		return nil
	})
}

// ReopenPoll reopens a closed poll for ReopenPeriod.
func (c *ListController) ReopenPoll(ctx context.Context, id int) error {
	closeAt := c.now().Add(ReopenPeriod).UTC()
	return c.mutate(ctx, id, "reopen_poll", MsgPollReopened, func(ctx context.Context) error {
		if err := c.api.ReopenPoll(ctx, id, &closeAt); err != nil {
			return err
		}
		c.list.MarkReopened(id, &closeAt)
		return nil
	})
}

// mutate runs a moderator action on one listed poll under the list's
// submitting guard.
func (c *ListController) mutate(ctx context.Context, id int, op, msg string, call func(context.Context) error) error {
	if err := c.life.check(); err != nil {
		return err
	}
	if err := c.requireModerator(); err != nil {
		return err
	}
	if _, ok := c.list.Get().Poll(id); !ok {
		return apperr.Ineligible(eligibility.ReasonNoPoll)
	}
	if !c.list.StartVoting() {
		return apperr.Ineligible(eligibility.ReasonSubmitting)
	}

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	err := call(ctx)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("poll action failed", "operation", op, "poll_id", id, "error", err)
		c.metrics.RemoteFailure(op)
		c.list.VoteError(apperr.Message(err))
		return err
	}
	c.list.VoteSuccess(msg)
	return nil
}

// Edit and delete

func (c *ListController) StartEdit(id int) error {
	if err := c.requireModerator(); err != nil {
		return err
	}
	p, ok := c.list.Get().Poll(id)
	if !ok {
		return apperr.Ineligible(eligibility.ReasonNoPoll)
	}
	c.list.StartEditPoll(p)
	return nil
}

// SubmitEdit saves the poll selected by StartEdit and reloads the list.
func (c *ListController) SubmitEdit(ctx context.Context, form models.PollForm, media []votingapi.Upload) error {
	if err := c.life.check(); err != nil {
		return err
	}
	if err := models.Validate(form); err != nil {
		return apperr.FromValidator(err)
	}
	target, ok := c.list.StartEditSubmit()
	if !ok {
		return apperr.Ineligible("edit dialog is not open")
	}

	scoped, cancel := c.life.scope(ctx)
	err := c.api.UpdatePoll(scoped, target.ID, form, media)
	cancel()
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to update poll", "poll_id", target.ID, "error", err)
		c.metrics.RemoteFailure("update_poll")
		c.list.EditError(apperr.Message(err))
		return err
	}

	c.list.EditSuccess()
	if err := c.LoadPolls(ctx); err != nil && !errors.Is(err, apperr.ErrClosed) {
		slog.Warn("failed to reload polls after edit", "error", err)
	}
	return nil
}

func (c *ListController) CancelEdit() {
	c.list.CloseEditDialog()
}

func (c *ListController) StartDelete(id int) error {
	if err := c.requireModerator(); err != nil {
		return err
	}
	p, ok := c.list.Get().Poll(id)
	if !ok {
		return apperr.Ineligible(eligibility.ReasonNoPoll)
	}
	c.list.StartDeletePoll(p)
	return nil
}

// SubmitDelete deletes the poll selected by StartDelete. The list is patched
// locally; no reload follows.
func (c *ListController) SubmitDelete(ctx context.Context) error {
	if err := c.life.check(); err != nil {
		return err
	}
	target, ok := c.list.StartDeleteSubmit()
	if !ok {
		return apperr.Ineligible("delete dialog is not open")
	}

	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	err := c.api.DeletePoll(ctx, target.ID)
	if c.life.closed() {
		return apperr.ErrClosed
	}
	if err != nil {
		slog.Error("failed to delete poll", "poll_id", target.ID, "error", err)
		c.metrics.RemoteFailure("delete_poll")
		c.list.DeleteError(apperr.Message(err))
		return err
	}
	c.list.DeleteSuccess(target.ID)
	return nil
}

func (c *ListController) CancelDelete() {
	c.list.CloseDeleteDialog()
}

// Participants

// LoadParticipants opens the participants dialog and fetches the roster.
func (c *ListController) LoadParticipants(ctx context.Context) (roster.State, error) {
	if err := c.life.check(); err != nil {
		return roster.State{}, err
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	c.roster.OpenDialog()
	if err := c.roster.Load(ctx); err != nil {
		var ev *apperr.EligibilityViolation
		if !errors.As(err, &ev) {
			c.metrics.RemoteFailure("list_participants")
		}
		return c.roster.Get(), err
	}
	return c.roster.Get(), nil
}

func (c *ListController) CloseParticipants() roster.State {
	c.roster.CloseDialog()
	return c.roster.Get()
}

func (c *ListController) ToggleExtra(ctx context.Context, guestID int) (roster.State, error) {
	if err := c.life.check(); err != nil {
		return roster.State{}, err
	}
	ctx, cancel := c.life.scope(ctx)
	defer cancel()

	if _, err := c.roster.ToggleExtra(ctx, guestID); err != nil {
		var ev *apperr.EligibilityViolation
		if !errors.As(err, &ev) {
			c.metrics.RemoteFailure("toggle_extra")
		}
		return c.roster.Get(), err
	}
	return c.roster.Get(), nil
}

func (c *ListController) requireModerator() error {
	if !c.access.HasFullAccess() {
		return apperr.Ineligible(ReasonModeratorOnly)
	}
	return nil
}

// settle reports teardown instead of the cancellation it caused.
func (c *ListController) settle(err error) error {
	if c.life.closed() {
		return apperr.ErrClosed
	}
	return err
}
