// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth inspects the viewer's access token.

# Access Tokens

The remote API issues a JWT when a viewer enters a project. Two kinds exist:

  - code: issued to the project contact (moderator); grants full access
  - share: handed out through a share link; anonymous participant

The local session API never verifies the signature (it has no key); the
remote API does that on every call. Parsing only reads the claims:

	access, err := auth.ParseAccessToken(raw)
	if access.HasFullAccess() { ... }

The token also carries a snapshot of the project (name, contacts, expected
class size) that the guest orchestrator and creation flow read.

# Fingerprints

Tokens are never logged. Use a fingerprint instead:

	slog.Info("session activated", "token", auth.Fingerprint(raw))
*/
package auth
