// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the tablo-voting session server.

tablo-voting runs next to the yearbook editor and owns the poll voting
experience of one project: guest registration, the poll list and detail
views, optimistic voting, poll authoring and the participant roster. The
polls themselves live behind the remote voting API; this server keeps the
view state and talks to that API on the viewer's behalf.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	VOTING_API_URL=https://api.example.com ACCESS_TOKEN=... go run main.go

Or with flags:

	go run main.go -p 3318 -api "https://api.example.com" -token "..."

# Configuration

Required settings:

  - VOTING_API_URL (-api): base URL of the remote voting API
  - ACCESS_TOKEN (-token): project access token (code or full)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): where the guest session marker is kept
    (default: file:tablo-voting.db)
  - DATABASE_TYPE (-t): sqlite or postgres
  - HTTP_TIMEOUT (-timeout): remote call timeout (default: 15s)
  - -env: dotenv file read before the environment (default: .env)

# Architecture

  - handlers: HTTP handlers over the voting controllers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - voting: list and detail controllers sharing one session lifetime
  - eligibility: pure vote rules and accessible labels
  - guest: guest registration entry states
  - flow: poll creation and class size dialogs
  - store: observable list and detail state
  - roster: participants and statistics
  - votingapi: remote API contract and HTTP client
  - session: persisted guest session marker
  - auth: access token claims
  - metrics: Prometheus collectors
  - models, apperr, dialog, db, cliparse: shared types and plumbing

See package documentation for each component.
*/
package main
