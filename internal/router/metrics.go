package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dobby_router_decisions_total",
	Help: "Routing decisions by tool and the stage that produced them.",
}, []string{"tool", "method"})

var classifierFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dobby_router_classifier_failures_total",
	Help: "Classifier calls that errored or returned an unusable payload.",
})
