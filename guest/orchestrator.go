// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package guest decides, once per feature activation, how the viewer gets a
// guest identity: reuse an existing session, register silently from the
// project contact, or ask for a name.
package guest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/dialog"
	"github.com/danielhkuo/tablo-voting/models"
)

type Entry string

const (
	EntryUnknown             Entry = ""
	EntryAlreadyRegistered   Entry = "already_registered"
	EntryAutoRegisterable    Entry = "auto_registerable"
	EntryInteractiveRequired Entry = "interactive_registration_required"
)

const ReasonRegistrationNeeded = "register with your name before voting"

// SessionStore persists the guest session marker.
type SessionStore interface {
	HasRegisteredSession(ctx context.Context) (bool, error)
	Save(ctx context.Context, gs models.GuestSession) error
}

// Registrar registers a guest with the remote API.
type Registrar interface {
	RegisterGuest(ctx context.Context, name string, email *string) (models.GuestSession, error)
}

// Classify picks the entry state. Only code tokens with a named contact can
// be registered without asking.
func Classify(hasSession bool, tokenType models.TokenType, project *models.Project) Entry {
	if hasSession {
		return EntryAlreadyRegistered
	}
	if _, ok := project.PrimaryContact(); ok && tokenType == models.TokenCode {
		return EntryAutoRegisterable
	}
	return EntryInteractiveRequired
}

// Outcome reports what Activate did.
type Outcome struct {
	Entry      Entry `json:"entry"`
	Registered bool  `json:"registered"`
	// CanLoad is false while data loading waits for the name dialog.
	CanLoad bool `json:"canLoad"`
	// FellBack is set when silent registration failed and the dialog opened.
	FellBack bool `json:"fellBack"`
}

// State is a point-in-time copy of the orchestrator.
type State struct {
	Entry      Entry        `json:"entry"`
	Registered bool         `json:"registered"`
	Dialog     dialog.State `json:"dialog"`
}

type Orchestrator struct {
	sessions  SessionStore
	api       Registrar
	tokenType models.TokenType
	project   models.Project

	mu         sync.Mutex
	entry      Entry
	registered bool
	dlg        dialog.State
}

func NewOrchestrator(sessions SessionStore, api Registrar, tokenType models.TokenType, project models.Project) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		api:       api,
		tokenType: tokenType,
		project:   project,
		dlg:       dialog.Closed(),
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{Entry: o.entry, Registered: o.registered, Dialog: o.dlg}
}

// Activate evaluates the entry state and acts on it.
func (o *Orchestrator) Activate(ctx context.Context) (Outcome, error) {
	has, err := o.sessions.HasRegisteredSession(ctx)
	if err != nil {
		// An unreadable marker is treated as missing; registering again is harmless
		slog.Warn("failed to read guest session", "error", err)
	}

	entry := Classify(has, o.tokenType, &o.project)
	o.mu.Lock()
	o.entry = entry
	o.mu.Unlock()

	switch entry {
	case EntryAlreadyRegistered:
		o.setRegistered()
		return Outcome{Entry: entry, Registered: true, CanLoad: true}, nil

	case EntryAutoRegisterable:
		contact, _ := o.project.PrimaryContact()
		if err := o.register(ctx, contact.Name, contact.Email); err != nil {
			if ctx.Err() != nil {
				return Outcome{Entry: entry}, ctx.Err()
			}
			slog.Error("automatic guest registration failed", "error", err, "project_id", o.project.ID)
			o.openDialog()
			return Outcome{Entry: entry, FellBack: true}, nil
		}
		slog.Info("guest registered automatically", "project_id", o.project.ID)
		return Outcome{Entry: entry, Registered: true, CanLoad: true}, nil
	}

	o.openDialog()
	return Outcome{Entry: entry}, nil
}

// SubmitName registers the guest from the name dialog. The form is validated
// before any network call.
func (o *Orchestrator) SubmitName(ctx context.Context, form models.GuestNameForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := models.Validate(form); err != nil {
		return apperr.FromValidator(err)
	}

	o.mu.Lock()
	if o.dlg.Status != dialog.StatusOpen {
		o.mu.Unlock()
		return apperr.Ineligible("name dialog is not open")
	}
	o.dlg = o.dlg.StartSubmit()
	o.mu.Unlock()

	var email *string
	if form.Email != "" {
		email = &form.Email
	}
	if err := o.register(ctx, form.Name, email); err != nil {
		o.mu.Lock()
		o.dlg = o.dlg.SubmitError(apperr.Message(err))
		o.mu.Unlock()
		return err
	}

	o.mu.Lock()
	o.dlg = o.dlg.SubmitSuccess()
	o.mu.Unlock()
	slog.Info("guest registered", "project_id", o.project.ID)
	return nil
}

// Dismiss closes the name dialog without registering. Polls may still be
// browsed; voting re-opens the dialog.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dlg.IsSubmitting() {
		return
	}
	o.dlg = o.dlg.Close()
}

// RequireRegistration gates every vote. Without a session it re-opens the
// name dialog and returns an EligibilityViolation.
func (o *Orchestrator) RequireRegistration() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.registered {
		return nil
	}
	o.dlg = o.dlg.ClearError().Open()
	return apperr.Ineligible(ReasonRegistrationNeeded)
}

func (o *Orchestrator) Registered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registered
}

func (o *Orchestrator) register(ctx context.Context, name string, email *string) error {
	gs, err := o.api.RegisterGuest(ctx, name, email)
	if err != nil {
		return err
	}
	if err := o.sessions.Save(ctx, gs); err != nil {
		return err
	}
	o.setRegistered()
	return nil
}

func (o *Orchestrator) setRegistered() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registered = true
}

func (o *Orchestrator) openDialog() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dlg = o.dlg.ClearError().Open()
}
