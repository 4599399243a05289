// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/tablo-voting/apperr"
)

// pathID reads a positive integer path parameter
func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperr.Validation(name, "must be a positive integer")
	}
	return id, nil
}
