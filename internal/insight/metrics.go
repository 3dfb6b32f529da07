package insight

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var insightRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "habitflow_insight_requests_total",
		Help: "AI insight requests by kind and result",
	},
	[]string{"kind", "result"},
)
