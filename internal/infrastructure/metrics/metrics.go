// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics contains Prometheus metrics for the chat surface.
type ChatMetrics struct {
	RoomsCreated    prometheus.Counter
	MessagesPosted  prometheus.Counter
	MessagesRead    prometheus.Counter
	PublishFailures prometheus.Counter
	WSConnections   prometheus.Gauge
	WSRooms         prometheus.Gauge
}

// NewChatMetrics creates and registers chat metrics with the given registerer.
func NewChatMetrics(registerer prometheus.Registerer) *ChatMetrics {
	metrics := &ChatMetrics{
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_chat_rooms_created_total",
			Help: "Total number of chat rooms created",
		}),
		MessagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_chat_messages_posted_total",
			Help: "Total number of messages persisted",
		}),
		MessagesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_chat_messages_read_total",
			Help: "Total number of messages newly marked read",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_chat_publish_failures_total",
			Help: "Total number of realtime publish failures after persistence",
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feastline_ws_connections",
			Help: "Current number of open WebSocket connections",
		}),
		WSRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feastline_ws_rooms",
			Help: "Current number of rooms with at least one subscriber",
		}),
	}

	registerer.MustRegister(
		metrics.RoomsCreated,
		metrics.MessagesPosted,
		metrics.MessagesRead,
		metrics.PublishFailures,
		metrics.WSConnections,
		metrics.WSRooms,
	)

	return metrics
}

// OrderMetrics contains Prometheus metrics for the ordering surface.
type OrderMetrics struct {
	OrdersPlaced   prometheus.Counter
	OrdersPaid     prometheus.Counter
	OrdersFailed   prometheus.Counter
	AmountCollected prometheus.Counter
}

// NewOrderMetrics creates and registers order metrics with the given registerer.
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	metrics := &OrderMetrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		OrdersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_orders_paid_total",
			Help: "Total number of orders with confirmed payment",
		}),
		OrdersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_orders_failed_total",
			Help: "Total number of orders removed after failed checkout",
		}),
		AmountCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feastline_orders_amount_collected_total",
			Help: "Sum of confirmed order amounts in the smallest currency unit",
		}),
	}

	registerer.MustRegister(
		metrics.OrdersPlaced,
		metrics.OrdersPaid,
		metrics.OrdersFailed,
		metrics.AmountCollected,
	)

	return metrics
}
