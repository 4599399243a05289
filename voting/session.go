// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"time"

	"github.com/danielhkuo/tablo-voting/apperr"
	"github.com/danielhkuo/tablo-voting/auth"
	"github.com/danielhkuo/tablo-voting/flow"
	"github.com/danielhkuo/tablo-voting/guest"
	"github.com/danielhkuo/tablo-voting/metrics"
	"github.com/danielhkuo/tablo-voting/roster"
	"github.com/danielhkuo/tablo-voting/store"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

// Session is one viewer's voting feature: the poll list, the poll being
// viewed, guest identity and the participant roster.
type Session struct {
	List   *ListController
	Detail *DetailController

	life *lifetime
}

// NewSession wires every component for the viewer identified by access.
func NewSession(api votingapi.API, sessions guest.SessionStore, access auth.Access, m *metrics.Metrics) *Session {
	life := newLifetime()
	g := guest.NewOrchestrator(sessions, api, access.TokenType, access.Project)
	list := store.NewPollListStore()

	detail := store.NewPollDetailStore()
	detail.SetFullAccess(access.HasFullAccess())

	lc := &ListController{
		api:     api,
		access:  access,
		guest:   g,
		list:    list,
		flow:    flow.NewCoordinator(),
		roster:  roster.New(api, access.HasFullAccess()),
		metrics: m,
		life:    life,
		now:     time.Now,
	}
	dc := &DetailController{
		api:     api,
		guest:   g,
		detail:  detail,
		list:    list,
		metrics: m,
		life:    life,
	}
	return &Session{List: lc, Detail: dc, life: life}
}

// Close tears the feature down. Calls in flight are cancelled and their late
// results dropped. Every store goes back to its initial snapshot.
func (s *Session) Close() {
	s.life.close()
	s.List.list.Reset()
	s.List.flow.Reset()
	s.List.roster.Reset()
	s.Detail.detail.Reset()
}

// lifetime scopes remote calls to the feature. Once closed, no result may
// be committed to a store.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifetime() *lifetime {
	ctx, cancel := context.WithCancel(context.Background())
	return &lifetime{ctx: ctx, cancel: cancel}
}

// scope returns a context cancelled by either ctx or teardown.
func (l *lifetime) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (l *lifetime) closed() bool {
	return l.ctx.Err() != nil
}

// check refuses work after teardown.
func (l *lifetime) check() error {
	if l.closed() {
		return apperr.ErrClosed
	}
	return nil
}

func (l *lifetime) close() {
	l.cancel()
}
