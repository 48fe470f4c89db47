// Package aggregate computes the bottom-up rollups: daily rows into week
// summaries, platform month totals, campaign and ad totals. All derived
// (ratio) fields are left zero here; the merge recompute pass fills them.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/period"
)

// BuildPlatformMonth aggregates one platform's rows for a single month into
// its month subtree: campaign totals (with ads when the export has a
// creative breakdown), the per-day ledger, and the raw month counters.
// The result is independent of row order.
func BuildPlatformMonth(rows []models.Row) *models.PlatformRecord {
	pr := &models.PlatformRecord{
		Campaigns: []models.CampaignRecord{},
		Daily:     []models.DailyRecord{},
	}

	type campAcc struct {
		counters models.Counters
		ads      map[string]*models.Counters
	}
	campaigns := make(map[string]*campAcc)
	daily := make(map[string]*models.Counters)

	for _, row := range rows {
		pr.Counters.Add(row.Counters)

		ca, ok := campaigns[row.Campaign]
		if !ok {
			ca = &campAcc{}
			campaigns[row.Campaign] = ca
		}
		ca.counters.Add(row.Counters)
		if row.Ad != "" {
			if ca.ads == nil {
				ca.ads = make(map[string]*models.Counters)
			}
			ad, ok := ca.ads[row.Ad]
			if !ok {
				ad = &models.Counters{}
				ca.ads[row.Ad] = ad
			}
			ad.Add(row.Counters)
		}

		day := row.Date.Format("2006-01-02")
		dc, ok := daily[day]
		if !ok {
			dc = &models.Counters{}
			daily[day] = dc
		}
		dc.Add(row.Counters)

		if row.ResultType != "" || row.Results > 0 {
			if pr.Traffic == nil {
				pr.Traffic = &models.SecondaryObjective{}
			}
			if pr.Traffic.ResultType == "" {
				pr.Traffic.ResultType = row.ResultType
			}
			pr.Traffic.Results += row.Results
		}
	}

	names := make([]string, 0, len(campaigns))
	for name := range campaigns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ca := campaigns[name]
		cr := models.CampaignRecord{Name: name, Counters: ca.counters}
		if len(ca.ads) > 0 {
			adNames := make([]string, 0, len(ca.ads))
			for ad := range ca.ads {
				adNames = append(adNames, ad)
			}
			sort.Strings(adNames)
			for _, ad := range adNames {
				cr.Ads = append(cr.Ads, models.AdRecord{Name: ad, Counters: *ca.ads[ad]})
			}
		}
		pr.Campaigns = append(pr.Campaigns, cr)
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		pr.Daily = append(pr.Daily, models.DailyRecord{Date: day, Counters: *daily[day]})
	}

	return pr
}

// BuildWeeks rebuilds a month's week subtree from the per-platform daily
// ledgers. Week summaries, cross-platform daily records and per-week
// platform counters all come from the same ledger, so they cannot drift.
// Derived metric fields stay zero; the recompute pass fills them.
func BuildWeeks(monthKey string, platforms map[string]*models.PlatformRecord) (map[string]*models.WeekRecord, error) {
	year, month, err := period.ParseMonthKey(monthKey)
	if err != nil {
		return nil, err
	}

	type weekAcc struct {
		index     int
		summary   models.Counters
		daily     map[string]*models.DailyRecord
		platforms map[string]models.Counters
	}
	weeks := make(map[string]*weekAcc)

	for platform, pr := range platforms {
		for _, d := range pr.Daily {
			t, err := time.Parse("2006-01-02", d.Date)
			if err != nil {
				return nil, fmt.Errorf("aggregate: month %s: bad ledger date %q: %w", monthKey, d.Date, err)
			}
			_, weekKey, index := period.Bucket(t)

			wa, ok := weeks[weekKey]
			if !ok {
				wa = &weekAcc{
					index:     index,
					daily:     make(map[string]*models.DailyRecord),
					platforms: make(map[string]models.Counters),
				}
				weeks[weekKey] = wa
			}
			wa.summary.Add(d.Counters)

			dr, ok := wa.daily[d.Date]
			if !ok {
				dr = &models.DailyRecord{Date: d.Date, DayOfWeek: period.DayOfWeek(t)}
				wa.daily[d.Date] = dr
			}
			dr.Counters.Add(d.Counters)

			pc := wa.platforms[platform]
			pc.Add(d.Counters)
			wa.platforms[platform] = pc
		}
	}

	out := make(map[string]*models.WeekRecord, len(weeks))
	for weekKey, wa := range weeks {
		wr := &models.WeekRecord{
			Dates:     period.WeekRange(year, month, wa.index),
			Summary:   models.Summary{Counters: wa.summary},
			Platforms: make(map[string]models.Summary, len(wa.platforms)),
		}
		days := make([]string, 0, len(wa.daily))
		for day := range wa.daily {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			wr.Daily = append(wr.Daily, *wa.daily[day])
		}
		for platform, counters := range wa.platforms {
			wr.Platforms[platform] = models.Summary{Counters: counters}
		}
		out[weekKey] = wr
	}
	return out, nil
}

// MonthCounters sums all platform counters of a month. The month summary is
// never set independently of its children.
func MonthCounters(platforms map[string]*models.PlatformRecord) models.Counters {
	var total models.Counters
	for _, pr := range platforms {
		total.Add(pr.Counters)
	}
	return total
}
