package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var remindersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "habitflow_reminders_total",
		Help: "Reminders that came due, by delivery mode",
	},
	[]string{"mode"},
)
