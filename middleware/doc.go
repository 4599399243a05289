// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for the
local session API.

# Request Logging

	mux.HandleFunc("GET /polls", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). The X-Request-ID header is reused when the UI shell
sends one and generated otherwise.

# Metrics

	middleware.WithMetrics(m, "/polls/{id}", handler)

Counts requests by method, route pattern and status, and observes their
duration.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, view)
	middleware.WriteError(w, err)

WriteError picks the status from the error kind: 400 for validation, 409
for eligibility, 502 for remote failures, 503 without connectivity and
410 once the session has been torn down.
*/
package middleware
