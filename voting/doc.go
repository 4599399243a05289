// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting wires the voting feature for one viewer.

A Session owns two controllers that share one guest orchestrator and one
lifetime:

  - ListController: activation, poll list, creation flow, close/reopen,
    edit, delete and the participant roster
  - DetailController: one poll, option selection and results

	sess := voting.NewSession(api, sessions, access, m)
	outcome, err := sess.List.Init(ctx)
	err = sess.Detail.SelectOption(ctx, pollID, optionID)

# Optimistic Votes

SelectOption changes the vote set on screen before the remote call returns.
A failure restores the previous set; a newer poll loaded in the meantime is
left alone. Single-choice switches withdraw every vote and then vote again.
When only the withdrawal succeeds, the viewer is left with the server's
empty vote set.

A confirmed vote applies the server's my_votes and can_vote_more, then the
poll is re-read so counts and totals match the server. A confirmation
without data keeps the selection on screen. Counts from before the vote are
never shown.

# Teardown

Close cancels every call in flight and resets every store. Results that
still arrive are dropped and every later call returns apperr.ErrClosed.
*/
package voting
