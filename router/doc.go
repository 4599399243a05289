// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the local session API.

# Route Registration

	mux := router.NewRouter(session, router.Options{Metrics: m, Gatherer: reg, DB: db})

Every voting route is wrapped with request logging and request metrics.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Session:

	POST /session/activate - Settle guest identity, load polls
	POST /guest/register   - Submit the name dialog
	POST /guest/dismiss    - Browse without registering

Poll list and creation (moderator):

	GET  /polls               - List snapshot with partitions
	POST /polls/reload        - Re-fetch polls
	POST /polls/create/start  - Start the creation flow
	POST /polls/create/cancel - Close the create dialog
	POST /polls               - Create poll
	POST /class-size/edit     - Edit class size outside the flow
	POST /class-size          - Submit class size
	POST /class-size/cancel   - Abandon class size step

Poll management (moderator):

	POST   /polls/{id}/close
	POST   /polls/{id}/reopen
	PUT    /polls/{id}
	DELETE /polls/{id}
	POST   /polls/edit/cancel
	POST   /polls/delete/cancel

Voting:

	GET  /polls/{id}
	POST /polls/{id}/options/{optionId}/select
	GET  /polls/{id}/results
	POST /polls/messages/dismiss

Participants:

	GET  /participants
	POST /participants/close
	POST /participants/{id}/toggle-extra
*/
package router
