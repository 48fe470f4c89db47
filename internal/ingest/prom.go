package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adreport_ingest_runs_total",
		Help: "Ingest runs started.",
	})
	rowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adreport_rows_parsed_total",
		Help: "CSV rows successfully parsed, per platform.",
	}, []string{"platform"})
	rowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adreport_rows_dropped_total",
		Help: "CSV rows dropped with a warning, per platform.",
	}, []string{"platform"})
	valuesClamped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adreport_values_clamped_total",
		Help: "Negative metric cells clamped to zero on kept rows, per platform.",
	}, []string{"platform"})
	platformsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adreport_platforms_skipped_total",
		Help: "Platform ingestions skipped due to schema mismatches.",
	}, []string{"platform"})
)
