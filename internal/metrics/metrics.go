// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	EntriesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_posted_total",
		Help: "Journal entries posted, by source",
	}, []string{"source"})

	EntriesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_entries_reversed_total",
		Help: "Journal entries reversed",
	})

	PostingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_posting_rejections_total",
		Help: "Post and reverse requests rejected, by operation and error code",
	}, []string{"operation", "code"})

	PeriodTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_period_transitions_total",
		Help: "Fiscal period status transitions, by action",
	}, []string{"action"})

	IntegrityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_integrity_errors_total",
		Help: "Report integrity check failures; any increase signals ledger corruption",
	}, []string{"report"})

	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_outbox_published_total",
		Help: "Outbox messages published",
	})

	OutboxFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_outbox_failures_total",
		Help: "Outbox publish failures, by outcome (retry or dead)",
	}, []string{"outcome"})
)
