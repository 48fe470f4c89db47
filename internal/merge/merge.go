// Package merge combines freshly parsed platform rows with the previously
// persisted dataset. A platform's CSV for a month is authoritative for that
// month: its whole subtree is replaced, never added to, which makes
// re-importing the same file idempotent. Months no import touches are
// deep-copied over verbatim.
package merge

import (
	"fmt"
	"sort"

	"github.com/adreport/adreport-etl/internal/aggregate"
	"github.com/adreport/adreport-etl/internal/kpi"
	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/period"
)

// ConflictError reports structural corruption of the existing persisted
// dataset. It is fatal: the run aborts before writing anything, leaving the
// committed dataset as the safe fallback.
type ConflictError struct {
	Month  string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge: month %s: %s", e.Month, e.Reason)
}

// Validate checks that every month's summary reconciles with its children
// before the dataset is used as a merge base.
func Validate(d *models.Dataset) error {
	for monthKey, m := range d.Months {
		if got := aggregate.MonthCounters(m.Platforms); m.Summary.Counters != got {
			return &ConflictError{Month: monthKey, Reason: fmt.Sprintf(
				"summary %+v does not equal platform sum %+v", m.Summary.Counters, got)}
		}
		for weekKey, w := range m.Weeks {
			var daily models.Counters
			for _, dr := range w.Daily {
				daily.Add(dr.Counters)
			}
			if w.Summary.Counters != daily {
				return &ConflictError{Month: monthKey, Reason: fmt.Sprintf(
					"%s summary %+v does not equal daily sum %+v", weekKey, w.Summary.Counters, daily)}
			}
		}
		for platform, pr := range m.Platforms {
			if len(pr.Daily) == 0 {
				continue
			}
			var daily models.Counters
			for _, dr := range pr.Daily {
				daily.Add(dr.Counters)
			}
			if pr.Counters != daily {
				return &ConflictError{Month: monthKey, Reason: fmt.Sprintf(
					"platform %s total %+v does not equal its daily ledger sum %+v", platform, pr.Counters, daily)}
			}
		}
	}
	return nil
}

// Merge produces a new dataset: existing months are deep-copied, then each
// incoming platform's subtree is replaced in every month its rows touch, and
// finally all derived state is recomputed across the whole dataset. The
// input dataset is never mutated. Merging platforms is commutative.
func Merge(existing *models.Dataset, incoming map[string][]models.Row) (*models.Dataset, error) {
	out := existing.Clone()
	if out.Months == nil {
		out.Months = make(map[string]*models.MonthRecord)
	}

	touched := make(map[string]bool)
	for platform, rows := range incoming {
		byMonth := make(map[string][]models.Row)
		for _, row := range rows {
			monthKey := period.MonthKey(row.Date)
			byMonth[monthKey] = append(byMonth[monthKey], row)
		}
		for monthKey, monthRows := range byMonth {
			m, ok := out.Months[monthKey]
			if !ok {
				m = models.NewMonthRecord()
				out.Months[monthKey] = m
			}
			m.Platforms[platform] = aggregate.BuildPlatformMonth(monthRows)
			touched[monthKey] = true
		}
	}

	if err := Recompute(out, touched); err != nil {
		return nil, err
	}
	return out, nil
}

// Recompute rebuilds every month's derived state from the raw counters:
// week subtrees for touched months, summaries and ratio metrics everywhere,
// and the previous-month changes. It always runs over the whole dataset
// because replacing month N shifts month N+1's stored change-vs-previous
// even when N+1's own rows were untouched.
func Recompute(d *models.Dataset, touched map[string]bool) error {
	monthKeys := make([]string, 0, len(d.Months))
	for k := range d.Months {
		monthKeys = append(monthKeys, k)
	}
	sort.Strings(monthKeys)

	for _, monthKey := range monthKeys {
		m := d.Months[monthKey]

		if touched[monthKey] {
			// Weeks are rebuilt from the per-platform daily ledgers. Datasets
			// written before the ledgers existed carry platform totals without
			// daily detail; rebuilding a touched month around such a platform
			// would drop its week history while the month summary kept it.
			for platform, pr := range m.Platforms {
				if len(pr.Daily) == 0 && pr.Counters != (models.Counters{}) {
					return &ConflictError{Month: monthKey, Reason: fmt.Sprintf(
						"platform %s has totals but no daily detail; re-import its CSV for this month", platform)}
				}
			}
			weeks, err := aggregate.BuildWeeks(monthKey, m.Platforms)
			if err != nil {
				return &ConflictError{Month: monthKey, Reason: err.Error()}
			}
			m.Weeks = weeks
		}

		m.Summary = kpi.Summarize(aggregate.MonthCounters(m.Platforms))
		for _, pr := range m.Platforms {
			pr.Summary = kpi.Summarize(pr.Counters)
			for i := range pr.Campaigns {
				pr.Campaigns[i].CPA = kpi.CPA(pr.Campaigns[i].Counters)
			}
		}
		for _, w := range m.Weeks {
			w.Summary = kpi.Summarize(w.Summary.Counters)
			for platform, s := range w.Platforms {
				w.Platforms[platform] = kpi.Summarize(s.Counters)
			}
		}
	}

	// Change pass: each month compares against the nearest preceding month
	// present in the dataset, not the literal prior calendar month.
	for i, monthKey := range monthKeys {
		m := d.Months[monthKey]
		if i == 0 {
			m.PreviousMonthChange = nil
			for _, pr := range m.Platforms {
				pr.CPAChange = nil
			}
			continue
		}
		prev := d.Months[monthKeys[i-1]]
		m.PreviousMonthChange = kpi.MonthChanges(m.Summary, prev.Summary)
		for platform, pr := range m.Platforms {
			prevPR, ok := prev.Platforms[platform]
			if !ok {
				pr.CPAChange = nil
				continue
			}
			pr.CPAChange = kpi.PercentChange(float64(pr.CPA), float64(prevPR.CPA))
		}
	}
	return nil
}
