// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package roster holds the participant list of a project together with its
// aggregate statistics, and the moderator-only "extra" flag.
package roster

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/dialog"
	"github.com/danielhkuo/tablo-voting/models"
	"github.com/danielhkuo/tablo-voting/store"
)

// ActiveWindow is how recent an activity must be to count as active.
const ActiveWindow = 24 * time.Hour

const ReasonModeratorOnly = "only the project contact can mark extra participants"

// API is the part of the voting API the roster calls.
type API interface {
	ListParticipants(ctx context.Context) (models.ParticipantList, error)
	ToggleParticipantExtra(ctx context.Context, guestID int) (models.ToggleExtraResult, error)
}

// State is one roster snapshot. Participants and Statistics are either both
// loaded or both empty.
type State struct {
	Loading        bool                          `json:"loading"`
	Participants   []models.Participant          `json:"participants"`
	Statistics     *models.ParticipantStatistics `json:"statistics,omitempty"`
	CurrentGuestID *int                          `json:"currentGuestId,omitempty"`
	TogglingID     *int                          `json:"togglingId,omitempty"`
	Error          string                        `json:"error,omitempty"`
	Dialog         dialog.State                  `json:"dialog"`
}

func (s State) Loaded() bool {
	return s.Statistics != nil
}

// Active returns the participants seen within ActiveWindow of now.
func (s State) Active(now time.Time) []models.Participant {
	out := []models.Participant{}
	for _, p := range s.Participants {
		if p.LastActivityAt != nil && now.Sub(*p.LastActivityAt) <= ActiveWindow {
			out = append(out, p)
		}
	}
	return out
}

func (s State) Participant(guestID int) (models.Participant, bool) {
	i := slices.IndexFunc(s.Participants, func(p models.Participant) bool { return p.ID == guestID })
	if i < 0 {
		return models.Participant{}, false
	}
	return s.Participants[i], true
}

// LastSeen renders the participant's last activity relative to now,
// e.g. "3 hours ago".
func LastSeen(p models.Participant, now time.Time) string {
	if p.LastActivityAt == nil {
		return "never"
	}
	return humanize.RelTime(*p.LastActivityAt, now, "ago", "from now")
}

// ParticipationRate is regular participants over the expected class size,
// as a percentage with one decimal. It is 0 without a class size.
func ParticipationRate(regular int, expected *int) float64 {
	if expected == nil || *expected <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(regular)).
		Div(decimal.NewFromInt(int64(*expected))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	f, _ := rate.Float64()
	return f
}

type Roster struct {
	api       API
	moderator bool
	obs       *store.Observable[State]
}

// New builds a roster. Only a moderator may toggle the extra flag.
func New(api API, moderator bool) *Roster {
	return &Roster{
		api:       api,
		moderator: moderator,
		obs:       store.NewObservable(initial()),
	}
}

func initial() State {
	return State{Participants: []models.Participant{}, Dialog: dialog.Closed()}
}

func (r *Roster) Get() State {
	return r.obs.Get()
}

func (r *Roster) Subscribe(fn func(State)) func() {
	return r.obs.Subscribe(fn)
}

func (r *Roster) OpenDialog() {
	r.obs.Update(func(st State) (State, bool) {
		st.Dialog = st.Dialog.ClearError().Open()
		return st, true
	})
}

func (r *Roster) CloseDialog() {
	r.obs.Update(func(st State) (State, bool) {
		st.Dialog = st.Dialog.Close()
		return st, true
	})
}

// Load fetches participants and statistics. Both land in the same update; on
// failure the previous snapshot stays and only the error changes.
func (r *Roster) Load(ctx context.Context) error {
	_, ok := r.obs.Update(func(st State) (State, bool) {
		if st.Loading {
			return st, false
		}
		st.Loading = true
		st.Error = ""
		return st, true
	})
	if !ok {
		return apperr.Ineligible("participants are already loading")
	}

	list, err := r.api.ListParticipants(ctx)
	if err != nil {
		slog.Error("failed to load participants", "error", err)
		r.obs.Update(func(st State) (State, bool) {
			st.Loading = false
			st.Error = apperr.Message(err)
			return st, true
		})
		return err
	}

	stats := list.Statistics
	r.obs.Update(func(st State) (State, bool) {
		st.Loading = false
		st.Participants = append([]models.Participant{}, list.Participants...)
		st.Statistics = &stats
		st.CurrentGuestID = list.CurrentGuestID
		return st, true
	})
	return nil
}

// ToggleExtra flips the extra flag of one participant. The flip and the
// matching statistics change are shown before the remote call; the server's
// answer then wins, and a failure restores the previous value.
func (r *Roster) ToggleExtra(ctx context.Context, guestID int) (bool, error) {
	if !r.moderator {
		return false, apperr.Ineligible(ReasonModeratorOnly)
	}

	var prev bool
	var refusal string
	_, ok := r.obs.Update(func(st State) (State, bool) {
		if st.TogglingID != nil {
			refusal = "another participant is being updated"
			return st, false
		}
		p, found := st.Participant(guestID)
		if !found || !st.Loaded() {
			refusal = "participant is not loaded"
			return st, false
		}
		prev = p.IsExtra
		st, _ = setExtra(st, guestID, !prev)
		id := guestID
		st.TogglingID = &id
		st.Error = ""
		return st, true
	})
	if !ok {
		return false, apperr.Ineligible(refusal)
	}

	res, err := r.api.ToggleParticipantExtra(ctx, guestID)
	if err != nil {
		slog.Error("failed to toggle extra participant", "error", err, "guest_id", guestID)
		r.obs.Update(func(st State) (State, bool) {
			st, _ = setExtra(st, guestID, prev)
			st.TogglingID = nil
			st.Error = apperr.Message(err)
			return st, true
		})
		return prev, err
	}

	r.obs.Update(func(st State) (State, bool) {
		st, _ = setExtra(st, guestID, res.IsExtra)
		st.TogglingID = nil
		return st, true
	})
	return res.IsExtra, nil
}

func (r *Roster) Reset() {
	r.obs.Set(initial())
}

// setExtra moves one participant to isExtra and shifts one unit between the
// extra and regular counts. It is a no-op when the flag already matches, so
// the count sum never drifts.
func setExtra(st State, guestID int, isExtra bool) (State, bool) {
	i := slices.IndexFunc(st.Participants, func(p models.Participant) bool { return p.ID == guestID })
	if i < 0 || st.Participants[i].IsExtra == isExtra {
		return st, false
	}

	participants := slices.Clone(st.Participants)
	participants[i].IsExtra = isExtra
	st.Participants = participants

	if st.Statistics != nil {
		stats := *st.Statistics
		if isExtra {
			stats.ExtraCount++
			stats.RegularCount--
		} else {
			stats.ExtraCount--
			stats.RegularCount++
		}
		stats.ParticipationRate = ParticipationRate(stats.RegularCount, stats.ExpectedClassSize)
		st.Statistics = &stats
	}
	return st, true
}
