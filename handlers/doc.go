// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the local session API.

# Handler Types

Each handler wraps one controller of a voting.Session:

  - SessionHandler: feature activation and guest registration
  - PollHandler: poll list, creation flow, class size, close/reopen, edit, delete
  - VotingHandler: poll detail and option selection
  - ResultsHandler: poll results
  - ParticipantHandler: participant roster and the extra flag

	pollHandler := handlers.NewPollHandler(session)

# Responses

Successful calls answer with the settled snapshot of the affected store,
in camelCase JSON, with every derived value already computed. Failures use
middleware.WriteError.

# Creation Flow

	POST /polls/create/start → class size dialog or create dialog
	POST /class-size         → stores the class size, then opens create
	POST /polls              → creates the poll (JSON or multipart with media)

# Voting

	POST /polls/{id}/options/{optionId}/select

Selecting an unselected option votes for it; selecting a selected option
under multiple choice withdraws it; selecting another option of a
single-choice poll moves the vote. Every vote requires a guest session.
*/
package handlers
