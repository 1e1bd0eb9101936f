package internal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

var (
	Metric_CreationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creation_requests",
		Help: "Total certificate creation requests handled, including deferred redeliveries",
	})
	Metric_DeferredRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deferred_requests",
		Help: "Creation requests re-queued for later redelivery",
	})
	Metric_FailedExecutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "failed_executions",
		Help: "lego runs that exited non-zero or timed out",
	})
	Metric_IssuedCertificates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issued_certificates",
		Help: "Certificate chains published back to requesters",
	})
	Metric_StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "status_transitions",
		Help: "Operational status transitions by resulting status",
	}, []string{"status"})
	Metric_ChainCacheFills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chain_cache_fills",
		Help: "Publication cache fills from the backing store",
	})
	Metric_ChainCacheLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chain_cache_lookups",
		Help: "Publication reads served through the cache",
	})
)

var (
	tallyReporter = promreporter.NewReporter(promreporter.Options{})

	Scope, _ = tally.NewRootScope(tally.ScopeOptions{
		Prefix:         "legra",
		CachedReporter: tallyReporter,
		Separator:      promreporter.DefaultSeparator,
	}, time.Second)

	Timer_LegoRun = Scope.Timer("lego_run_duration")
)
