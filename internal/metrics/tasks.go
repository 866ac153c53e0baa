package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTaskOperations = "task_operations_total"
	NameTasks          = "tasks"
)

var TaskOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTaskOperations,
		Help:      "Task operations by outcome",
		Namespace: Namespace,
	},
	[]string{LabelOperation, LabelOutcome},
)

var Tasks = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name:      NameTasks,
		Help:      "Current tasks",
		Namespace: Namespace,
	},
	[]string{LabelState},
)
