// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/tablo-voting/models"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrUnknownTokenType = errors.New("unknown token type")
)

type projectClaim struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	ExpectedClassSize *int             `json:"expected_class_size,omitempty"`
	Contacts          []models.Contact `json:"contacts,omitempty"`
}

type accessClaims struct {
	TokenType string        `json:"token_type"`
	ProjectID int           `json:"project_id"`
	Project   *projectClaim `json:"project,omitempty"`
	jwt.RegisteredClaims
}

// Access is what the voting core needs to know about the viewer.
type Access struct {
	Token     string
	TokenType models.TokenType
	Project   models.Project
}

// HasFullAccess is true for the project contact (moderator).
func (a Access) HasFullAccess() bool {
	return a.TokenType == models.TokenCode
}

// ParseAccessToken reads the claims of raw without verifying its signature
func ParseAccessToken(raw string) (Access, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Access{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tt := models.TokenType(claims.TokenType)
	if tt != models.TokenCode && tt != models.TokenShare {
		return Access{}, fmt.Errorf("%w: %q", ErrUnknownTokenType, claims.TokenType)
	}

	access := Access{
		Token:     raw,
		TokenType: tt,
		Project:   models.Project{ID: claims.ProjectID, Contacts: []models.Contact{}},
	}
	if p := claims.Project; p != nil {
		access.Project.Name = p.Name
		access.Project.ExpectedClassSize = p.ExpectedClassSize
		if p.Contacts != nil {
			access.Project.Contacts = p.Contacts
		}
		if access.Project.ID == 0 {
			access.Project.ID = p.ID
		}
	}
	return access, nil
}

// Fingerprint returns a short, stable, non-reversible id for a token
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
