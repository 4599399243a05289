// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Config Fields

  - Port: session API listen port (default: 3318)
  - VotingAPIURL: tenant-scoped base URL of the remote voting API (required)
  - AccessToken: the viewer's code or share token (required)
  - DatabaseURL: guest session database (default: file:tablo-voting.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - HTTPTimeout: per-request timeout for the voting API (default: 15s)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	VOTING_API_URL → -api
	ACCESS_TOKEN   → -token
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	HTTP_TIMEOUT   → -timeout

A dotenv file (-env, default .env) is loaded first when present. It never
overrides variables already set, and CLI flags take precedence over both.
*/
package cliparse
