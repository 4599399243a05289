package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/tablo-voting/auth"
	"github.com/danielhkuo/tablo-voting/cliparse"
	"github.com/danielhkuo/tablo-voting/db"
	"github.com/danielhkuo/tablo-voting/metrics"
	"github.com/danielhkuo/tablo-voting/middleware"
	"github.com/danielhkuo/tablo-voting/router"
	"github.com/danielhkuo/tablo-voting/session"
	"github.com/danielhkuo/tablo-voting/voting"
	"github.com/danielhkuo/tablo-voting/votingapi"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	access, err := auth.ParseAccessToken(cfg.AccessToken)
	if err != nil {
		slog.Error("invalid access token", "error", err)
		os.Exit(1)
	}
	slog.Info("access token accepted",
		"token", auth.Fingerprint(access.Token),
		"token_type", access.TokenType,
		"project_id", access.Project.ID,
	)

	// Connect to the session database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	sessions := session.NewStore(dbConn, access.Project.ID)
	if _, err := sessions.Load(context.Background()); err != nil {
		slog.Warn("failed to read guest session", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	api := votingapi.NewClient(cfg.VotingAPIURL, access.Token, access.Project.ID, sessions, cfg.HTTPTimeout)
	voteSession := voting.NewSession(api, sessions, access, m)

	// Create router
	mux := router.NewRouter(voteSession, router.Options{Metrics: m, Gatherer: reg, DB: dbConn})

	// Loopback only; the UI shell runs on the same machine
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    "127.0.0.1:" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		voteSession.Close()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
