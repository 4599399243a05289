// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the local state database and creates its schema.

# Drivers

Two drivers are registered:

  - sqlite (modernc.org/sqlite, pure Go): the default, a file next to the binary
  - postgres (github.com/lib/pq): for shared kiosk installs

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables.

# Tables

  - guest_session: the marker proving this viewer registered as a guest in a
    project. Poll data itself is never stored locally; the remote API owns it.
*/
package db
