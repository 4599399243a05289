// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/tablo-voting/handlers"
	"github.com/danielhkuo/tablo-voting/metrics"
	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/voting"
)

// Options carries the optional observability wiring. Zero values disable it.
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	DB       *sql.DB
}

func NewRouter(session *voting.Session, opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(session)
	pollHandler := handlers.NewPollHandler(session)
	votingHandler := handlers.NewVotingHandler(session)
	resultsHandler := handlers.NewResultsHandler(session)
	participantHandler := handlers.NewParticipantHandler(session)

	handle := func(pattern string, h http.HandlerFunc) {
		route := pattern[strings.IndexByte(pattern, ' ')+1:]
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(opts.Metrics, route, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if opts.DB != nil {
			if err := opts.DB.PingContext(r.Context()); err != nil {
				middleware.ErrorResponse(w, http.StatusServiceUnavailable, "session database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if opts.Gatherer != nil {
		metricsHandler := promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
		mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
			if opts.DB != nil {
				opts.Metrics.RecordDBPoolStats(opts.DB.Stats())
			}
			metricsHandler.ServeHTTP(w, r)
		})
	}

	// Session and guest identity
	handle("POST /session/activate", sessionHandler.Activate)
	handle("POST /guest/register", sessionHandler.RegisterGuest)
	handle("POST /guest/dismiss", sessionHandler.DismissGuest)

	// Poll list and creation flow
	handle("GET /polls", pollHandler.ListPolls)
	handle("POST /polls/reload", pollHandler.ReloadPolls)
	handle("POST /polls/create/start", pollHandler.StartCreate)
	handle("POST /polls/create/cancel", pollHandler.CancelCreate)
	handle("POST /polls", pollHandler.CreatePoll)
	handle("POST /class-size/edit", pollHandler.StartEditClassSize)
	handle("POST /class-size", pollHandler.SubmitClassSize)
	handle("POST /class-size/cancel", pollHandler.CancelClassSize)

	// Poll management (moderator operations)
	handle("POST /polls/{id}/close", pollHandler.ClosePoll)
	handle("POST /polls/{id}/reopen", pollHandler.ReopenPoll)
	handle("PUT /polls/{id}", pollHandler.UpdatePoll)
	handle("DELETE /polls/{id}", pollHandler.DeletePoll)
	handle("POST /polls/edit/cancel", pollHandler.CancelEdit)
	handle("POST /polls/delete/cancel", pollHandler.CancelDelete)

	// Voting
	handle("GET /polls/{id}", votingHandler.GetPoll)
	handle("POST /polls/{id}/options/{optionId}/select", votingHandler.SelectOption)
	handle("GET /polls/{id}/results", resultsHandler.GetResults)
	handle("POST /polls/messages/dismiss", votingHandler.DismissMessages)

	// Participants
	handle("GET /participants", participantHandler.ListParticipants)
	handle("POST /participants/close", participantHandler.CloseParticipants)
	handle("POST /participants/{id}/toggle-extra", participantHandler.ToggleExtra)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tablo-voting session API v1"))
	})

	return mux
}
