// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus instruments of the session API.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tablo"

// Vote actions
const (
	ActionVote   = "vote"
	ActionRemove = "remove"
	ActionSwitch = "switch"
)

// Metrics holds Prometheus metrics for the session API. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	Votes            *prometheus.CounterVec
	RemoteFailures   *prometheus.CounterVec
	DBConnPoolStats  *prometheus.GaugeVec
}

// New registers every instrument with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of session API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Session API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of session API requests currently being processed",
			},
		),
		Votes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "voting",
				Name:      "votes_total",
				Help:      "Votes accepted by the remote API, by action",
			},
			[]string{"action"},
		),
		RemoteFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "voting",
				Name:      "remote_failures_total",
				Help:      "Remote API calls that failed, by operation",
			},
			[]string{"operation"},
		),
		DBConnPoolStats: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session_db",
				Name:      "connection_pool",
				Help:      "Session database connection pool statistics",
			},
			[]string{"stat"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) Vote(action string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(action).Inc()
}

func (m *Metrics) RemoteFailure(operation string) {
	if m == nil {
		return
	}
	m.RemoteFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.RequestsInFlight.Add(delta)
}

// RecordDBPoolStats records database connection pool statistics
func (m *Metrics) RecordDBPoolStats(s sql.DBStats) {
	if m == nil {
		return
	}
	m.DBConnPoolStats.WithLabelValues("open").Set(float64(s.OpenConnections))
	m.DBConnPoolStats.WithLabelValues("in_use").Set(float64(s.InUse))
	m.DBConnPoolStats.WithLabelValues("idle").Set(float64(s.Idle))
	m.DBConnPoolStats.WithLabelValues("wait_count").Set(float64(s.WaitCount))
	m.DBConnPoolStats.WithLabelValues("wait_duration_ms").Set(float64(s.WaitDuration.Milliseconds()))
}
