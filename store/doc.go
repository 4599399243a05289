// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store holds the observable poll list and poll detail state.
// Every update publishes a new snapshot; snapshots already handed out are
// never mutated.
package store
