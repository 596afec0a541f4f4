package user

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCreated        = "created"
	outcomeWaitlisted     = "waitlisted"
	outcomeSkipped        = "skipped"
	outcomeFailed         = "failed"
	outcomeWaitlistFailed = "waitlist_failed"
	outcomeRemoved        = "removed"
)

var (
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_import_rows_total",
		Help: "Import file rows by outcome",
	}, []string{"outcome"})

	importRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_import_runs_total",
		Help: "Finished import runs by result",
	}, []string{"result"})

	userCreateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "user_import_create_duration_seconds",
		Help:    "Duration of identity store creations including username allocation",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	sweepEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_import_sweep_entries_total",
		Help: "Due waitlist entries by sweep outcome",
	}, []string{"outcome"})

	waitlistDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_import_waitlist_delete_failures_total",
		Help: "Waitlist entries whose user was created but whose removal failed",
	})
)
