package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConsolePolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_console_polls_total",
		Help: "Total number of console buffer polls",
	}, []string{"status"})

	ConsoleWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_console_writes_total",
		Help: "Total number of lines written to the console",
	}, []string{"status"})

	EventsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_events_classified_total",
		Help: "Total number of console events classified, by event type",
	}, []string{"type"})

	CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_commands_dispatched_total",
		Help: "Total number of chat commands dispatched",
	}, []string{"command", "status"})

	SanctionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_sanctions_issued_total",
		Help: "Total number of sanctions issued",
	}, []string{"category"})

	EloRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warden_elo_request_duration_seconds",
		Help:    "Duration of rating service requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	EloRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_elo_requests_total",
		Help: "Total number of rating service requests",
	}, []string{"endpoint", "status"})

	PlayersEjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_players_ejected_total",
		Help: "Total number of players removed for rating violations",
	}, []string{"reason"})

	BridgeMessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_bridge_messages_sent_total",
		Help: "Total number of messages relayed to the bridge channel",
	}, []string{"status"})
)
