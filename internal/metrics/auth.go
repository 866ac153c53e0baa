package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const NameSecurityEvents = "security_events_total"

var SecurityEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameSecurityEvents,
		Help:      "Authentication and token events",
		Namespace: Namespace,
	},
	[]string{LabelEvent},
)
