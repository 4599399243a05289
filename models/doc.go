// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, wire and form types of the voting core.

# Domain Types

camelCase shapes the stores hold and the session API renders:

  - Poll: poll metadata, vote budget and the viewer's vote set (MyVotes)
  - PollOption: option with optional result fields (VotesCount, Percentage)
  - PollResults: results with populated counts on every option
  - Participant, ParticipantStatistics, ParticipantList: the roster
  - Project, Contact: the tenant as seen by the viewer
  - GuestSession: the local registration marker
  - VoteResult, ToggleExtraResult: mutation results

# Wire Types

snake_case shapes spoken by the remote API (APIPoll, APIVote, ...), each
wrapped in an Envelope:

	{"success": true, "message": "...", "data": {...}}

Only the mapping layer converts between the two. Mapping enforces the vote
budget: single-choice polls always allow exactly one vote, and a budget
below one is treated as one. MyVotes is deduplicated and never nil.

# Forms

  - PollForm, PollOptionForm: create and edit
  - ClassSizeForm: expected class size (MinClassSize..MaxClassSize)
  - GuestNameForm: name dialog

Forms are checked with Validate (go-playground/validator struct tags)
before any network call.

# Constants

Poll types:

	PollTypeTemplate = "template"
	PollTypeCustom   = "custom"

Token types:

	TokenCode  = "code"
	TokenShare = "share"
*/
package models
