// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package flow sequences the poll creation dialogs. A tenant without polls
// and without an expected class size must set the class size before the
// first create dialog opens; the coordinator then resumes into the create
// dialog on its own.
package flow

import (
	"sync"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/dialog"
	"github.com/danielhkuo/tablo-voting/models"
)

type Stage string

const (
	StageIdle              Stage = "idle"
	StageAwaitingClassSize Stage = "awaiting_class_size"
	StageEditingClassSize  Stage = "editing_class_size"
	StageCreateDialogOpen  Stage = "create_dialog_open"
)

// Snapshot is a point-in-time copy of the coordinator.
type Snapshot struct {
	Stage                    Stage        `json:"stage"`
	ClassSizeDialog          dialog.State `json:"classSizeDialog"`
	CreateDialog             dialog.State `json:"createDialog"`
	OpenCreateAfterClassSize bool         `json:"openCreateAfterClassSize"`
}

// Coordinator owns the class size and create poll dialogs. At most one of
// them is open at any time.
type Coordinator struct {
	mu                       sync.Mutex
	classSize                dialog.State
	create                   dialog.State
	openCreateAfterClassSize bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		classSize: dialog.Closed(),
		create:    dialog.Closed(),
	}
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Coordinator) snapshot() Snapshot {
	return Snapshot{
		Stage:                    c.stage(),
		ClassSizeDialog:          c.classSize,
		CreateDialog:             c.create,
		OpenCreateAfterClassSize: c.openCreateAfterClassSize,
	}
}

func (c *Coordinator) stage() Stage {
	switch {
	case c.create.IsOpen():
		return StageCreateDialogOpen
	case c.classSize.IsOpen() && c.openCreateAfterClassSize:
		return StageAwaitingClassSize
	case c.classSize.IsOpen():
		return StageEditingClassSize
	}
	return StageIdle
}

// StartCreatePoll begins a new creation flow. Stale errors from both dialogs
// are dropped first. When needsClassSize is true the class size dialog opens
// and the create dialog is deferred until ClassSizeSuccess.
func (c *Coordinator) StartCreatePoll(needsClassSize bool) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.create = c.create.ClearError()
	c.classSize = c.classSize.ClearError()

	if needsClassSize {
		c.create = c.create.Close()
		c.openCreateAfterClassSize = true
		c.classSize = c.classSize.Open()
	} else {
		c.classSize = c.classSize.Close()
		c.openCreateAfterClassSize = false
		c.create = c.create.Open()
	}
	return c.snapshot()
}

// StartEditClassSize opens the class size dialog outside the create flow, so
// a later success must not chain into the create dialog.
func (c *Coordinator) StartEditClassSize() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.create = c.create.Close()
	c.openCreateAfterClassSize = false
	c.classSize = c.classSize.ClearError().Open()
	return c.snapshot()
}

// SubmitClassSize validates value locally and moves the dialog into
// submitting. A ValidationError leaves the dialog state untouched.
func (c *Coordinator) SubmitClassSize(value int) error {
	if err := models.Validate(models.ClassSizeForm{ExpectedClassSize: value}); err != nil {
		return apperr.Validation("expectedClassSize", "class size must be a whole number between 5 and 500")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.classSize.Status != dialog.StatusOpen {
		return apperr.Ineligible("class size dialog is not open")
	}
	c.classSize = c.classSize.StartSubmit()
	return nil
}

// ClassSizeSuccess closes the class size dialog and, only when it was entered
// through StartCreatePoll, opens the create dialog.
func (c *Coordinator) ClassSizeSuccess() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.classSize = c.classSize.SubmitSuccess()
	if c.openCreateAfterClassSize {
		c.openCreateAfterClassSize = false
		c.create = c.create.ClearError().Open()
	}
	return c.snapshot()
}

func (c *Coordinator) ClassSizeError(msg string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.classSize = c.classSize.SubmitError(msg)
	return c.snapshot()
}

// CancelClassSize abandons the class size step and any pending create.
func (c *Coordinator) CancelClassSize() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.classSize = c.classSize.Close()
	c.openCreateAfterClassSize = false
	return c.snapshot()
}

func (c *Coordinator) StartCreateSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.create.Status != dialog.StatusOpen {
		return apperr.Ineligible("create dialog is not open")
	}
	c.create = c.create.StartSubmit()
	return nil
}

func (c *Coordinator) CreateSuccess() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.create = c.create.SubmitSuccess()
	return c.snapshot()
}

func (c *Coordinator) CreateError(msg string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.create = c.create.SubmitError(msg)
	return c.snapshot()
}

func (c *Coordinator) CancelCreate() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.create = c.create.Close()
	return c.snapshot()
}

func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.classSize = dialog.Closed()
	c.create = dialog.Closed()
	c.openCreateAfterClassSize = false
}
