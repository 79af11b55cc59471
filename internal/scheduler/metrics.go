package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbell_evaluations_total",
		Help: "Number of scheduler evaluation cycles run.",
	})
	dueMatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbell_due_matched_total",
		Help: "Number of tasks matched as due across all cycles.",
	})
	notificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbell_notifications_sent_total",
		Help: "Number of notifications successfully rendered.",
	})
	notificationsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbell_notifications_suppressed_total",
		Help: "Number of due matches suppressed by the dedup window.",
	})
	deliveryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbell_delivery_failures_total",
		Help: "Number of failed notification deliveries by failure kind.",
	}, []string{"kind"})
)
