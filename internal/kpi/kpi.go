// Package kpi derives the display metrics (CTR, CVR, CPC, CPM, CPA) and the
// period-over-period changes from raw counters.
//
// It is shared by the ingestion engine and by anything that renders the
// dataset, so the formulas exist exactly once. Two distinct "no data"
// conventions live here and must not be conflated:
//
//   - a displayed ratio with a zero denominator is 0 (no activity)
//   - a percent change with a zero or missing baseline is nil (no baseline)
package kpi

import (
	"math"

	"github.com/adreport/adreport-etl/internal/models"
)

// Inverse marks the metrics where lower is better. The engine only computes
// magnitude and sign; renderers use this to pick the change polarity.
var Inverse = map[string]bool{
	"cpc": true,
	"cpa": true,
}

// CTR is clicks per impression as a percentage, 2 decimals.
func CTR(c models.Counters) float64 {
	return round2(safeDiv(float64(c.Clicks), float64(c.Impressions)) * 100)
}

// CVR is conversions per click as a percentage, 2 decimals.
func CVR(c models.Counters) float64 {
	return round2(safeDiv(float64(c.Conversions), float64(c.Clicks)) * 100)
}

// CPC is cost per click, rounded to a whole currency unit.
func CPC(c models.Counters) int64 {
	return int64(math.Round(safeDiv(float64(c.Cost), float64(c.Clicks))))
}

// CPM is cost per thousand impressions, rounded to a whole currency unit.
func CPM(c models.Counters) int64 {
	return int64(math.Round(safeDiv(float64(c.Cost), float64(c.Impressions)) * 1000))
}

// CPA is cost per conversion, rounded to a whole currency unit.
func CPA(c models.Counters) int64 {
	return int64(math.Round(safeDiv(float64(c.Cost), float64(c.Conversions))))
}

// Summarize fills every derived metric for the given counters.
func Summarize(c models.Counters) models.Summary {
	return models.Summary{
		Counters: c,
		CTR:      CTR(c),
		CVR:      CVR(c),
		CPC:      CPC(c),
		CPM:      CPM(c),
		CPA:      CPA(c),
	}
}

// PercentChange returns (current-previous)/previous*100 rounded to one
// decimal, or nil when previous is zero: a missing baseline is not a 0%
// change.
func PercentChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := round1((current - previous) / previous * 100)
	return &v
}

// MonthChanges computes the previous-period change for every metric of a
// month summary.
func MonthChanges(current, previous models.Summary) models.Changes {
	return models.Changes{
		"cost":        PercentChange(float64(current.Cost), float64(previous.Cost)),
		"impressions": PercentChange(float64(current.Impressions), float64(previous.Impressions)),
		"clicks":      PercentChange(float64(current.Clicks), float64(previous.Clicks)),
		"conversions": PercentChange(float64(current.Conversions), float64(previous.Conversions)),
		"ctr":         PercentChange(current.CTR, previous.CTR),
		"cvr":         PercentChange(current.CVR, previous.CVR),
		"cpc":         PercentChange(float64(current.CPC), float64(previous.CPC)),
		"cpm":         PercentChange(float64(current.CPM), float64(previous.CPM)),
		"cpa":         PercentChange(float64(current.CPA), float64(previous.CPA)),
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
