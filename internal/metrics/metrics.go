package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushgate_messages_total",
			Help: "Message lifecycle counter by stage and kind",
		},
		[]string{"stage", "kind"}, // queued|rejected|delivered|failed|discarded , text|image
	)

	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushgate_callbacks_total",
			Help: "Delivery-result callback attempts by outcome",
		},
		[]string{"status"}, // ok|failed
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pushgate_queue_depth",
			Help: "Current number of queued messages (best-effort)",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		MessagesTotal,
		CallbacksTotal,
		QueueDepth,
	)
}
