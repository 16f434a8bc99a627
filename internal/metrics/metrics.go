package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsignal_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomsignal_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Presence metrics
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomsignal_active_rooms",
			Help: "Rooms with at least one member",
		},
	)

	BoundParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomsignal_bound_participants",
			Help: "Participants with a live connection",
		},
	)

	OpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomsignal_open_connections",
			Help: "Open WebSocket connections",
		},
	)

	PresenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsignal_presence_events_total",
			Help: "Arrivals and departures",
		},
		[]string{"kind"}, // "joined" or "left"
	)

	// Relay metrics
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsignal_events_delivered_total",
			Help: "Events enqueued on a connection",
		},
		[]string{"event"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsignal_events_dropped_total",
			Help: "Events that could not be delivered",
		},
		[]string{"event", "reason"},
	)

	InboundRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsignal_inbound_rejected_total",
			Help: "Inbound events rejected before reaching the hub",
		},
		[]string{"code"},
	)

	// Audit metrics
	AuditDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomsignal_audit_dropped_total",
			Help: "Presence audit records dropped because the buffer was full",
		},
	)
)
