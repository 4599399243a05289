// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session persists the guest session marker for each project.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danielhkuo/tablo-voting/models"
)

// Store keeps one guest session per project and caches the marker for the
// active project so request headers never hit the database.
type Store struct {
	db        *sql.DB
	projectID int

	mu     sync.RWMutex
	cached *models.GuestSession
}

func NewStore(db *sql.DB, projectID int) *Store {
	return &Store{db: db, projectID: projectID}
}

// Load returns the marker for the active project, or nil when none exists.
func (s *Store) Load(ctx context.Context) (*models.GuestSession, error) {
	var gs models.GuestSession
	var email sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, session_token, guest_id, guest_name, guest_email
		FROM guest_session
		WHERE project_id = $1
	`, s.projectID).Scan(&gs.ProjectID, &gs.Token, &gs.GuestID, &gs.GuestName, &email)

	if errors.Is(err, sql.ErrNoRows) {
		s.setCached(nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query guest session: %w", err)
	}
	if email.Valid {
		gs.GuestEmail = &email.String
	}

	s.setCached(&gs)
	return &gs, nil
}

// HasRegisteredSession reports whether the viewer already registered in the
// active project.
func (s *Store) HasRegisteredSession(ctx context.Context) (bool, error) {
	gs, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return gs != nil, nil
}

// Save stores gs as the marker for the active project, replacing any older one.
func (s *Store) Save(ctx context.Context, gs models.GuestSession) error {
	gs.ProjectID = s.projectID
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guest_session (project_id, session_token, guest_id, guest_name, guest_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id) DO UPDATE
		SET session_token = EXCLUDED.session_token,
		    guest_id = EXCLUDED.guest_id,
		    guest_name = EXCLUDED.guest_name,
		    guest_email = EXCLUDED.guest_email,
		    created_at = EXCLUDED.created_at
	`, gs.ProjectID, gs.Token, gs.GuestID, gs.GuestName, gs.GuestEmail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save guest session: %w", err)
	}

	s.setCached(&gs)
	return nil
}

// Clear forgets the marker for the active project.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM guest_session WHERE project_id = $1`, s.projectID); err != nil {
		return fmt.Errorf("failed to clear guest session: %w", err)
	}
	s.setCached(nil)
	return nil
}

// SessionToken returns the cached token; it satisfies votingapi.SessionSource.
func (s *Store) SessionToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return ""
	}
	return s.cached.Token
}

func (s *Store) setCached(gs *models.GuestSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = gs
}
