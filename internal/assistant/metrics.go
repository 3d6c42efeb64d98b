package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dobby_assistant_replies_total",
		Help: "Replies produced, by handler.",
	}, []string{"tool"})

	handlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dobby_assistant_handler_failures_total",
		Help: "Handler runs that ended in an apology.",
	}, []string{"tool"})
)
