package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

// Metrics holds the service counters on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RoomsCreated        prometheus.Counter
	RoomJoins           prometheus.Counter
	Moves               prometheus.Counter
	Resets              prometheus.Counter
	OpponentDisconnects prometheus.Counter
	OpponentReconnects  prometheus.Counter
	RoomsCollected      *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
	ConnectedClients    prometheus.Gauge
	MessagesReceived    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Number of rooms created",
		}),
		RoomJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_joins_total",
			Help:      "Number of successful room joins, rejoins included",
		}),
		Moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Number of moves written",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Number of games reset",
		}),
		OpponentDisconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opponent_disconnects_total",
			Help:      "Number of opponent disconnects reported to players",
		}),
		OpponentReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opponent_reconnects_total",
			Help:      "Number of opponent reconnects reported to players",
		}),
		RoomsCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_collected_total",
			Help:      "Number of rooms deleted by the janitor",
		}, []string{"reason"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open room sessions",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open websocket connections",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Number of websocket messages received",
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RoomsCreated,
		m.RoomJoins,
		m.Moves,
		m.Resets,
		m.OpponentDisconnects,
		m.OpponentReconnects,
		m.RoomsCollected,
		m.ActiveSessions,
		m.ConnectedClients,
		m.MessagesReceived,
	)

	return m
}

// ObserveCollection records one janitor pass.
func (that *Metrics) ObserveCollection(old, finished int) {
	that.RoomsCollected.WithLabelValues("expired").Add(float64(old))
	that.RoomsCollected.WithLabelValues("finished").Add(float64(finished))
}

// Handler serves the registry in the Prometheus exposition format.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
