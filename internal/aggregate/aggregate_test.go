package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adreport/adreport-etl/internal/models"
)

func row(day int, campaign string, cost, imp, clicks, conv int64) models.Row {
	return models.Row{
		Date:     time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Platform: "google",
		Campaign: campaign,
		Counters: models.Counters{Cost: cost, Impressions: imp, Clicks: clicks, Conversions: conv},
	}
}

func TestBuildPlatformMonth(t *testing.T) {
	rows := []models.Row{
		row(1, "Campaign A", 1000, 10000, 100, 5),
		row(2, "Campaign A", 1500, 12000, 120, 6),
	}
	pr := BuildPlatformMonth(rows)

	want := models.Counters{Cost: 2500, Impressions: 22000, Clicks: 220, Conversions: 11}
	assert.Equal(t, want, pr.Counters)

	require.Len(t, pr.Campaigns, 1)
	assert.Equal(t, "Campaign A", pr.Campaigns[0].Name)
	assert.Equal(t, want, pr.Campaigns[0].Counters)

	require.Len(t, pr.Daily, 2)
	assert.Equal(t, "2024-03-01", pr.Daily[0].Date)
	assert.Equal(t, "2024-03-02", pr.Daily[1].Date)
	assert.Equal(t, int64(1000), pr.Daily[0].Cost)
}

func TestBuildPlatformMonthOrderIndependent(t *testing.T) {
	rows := []models.Row{
		row(1, "B", 100, 1000, 10, 1),
		row(2, "A", 200, 2000, 20, 2),
		row(1, "A", 300, 3000, 30, 3),
	}
	reversed := []models.Row{rows[2], rows[1], rows[0]}

	assert.Equal(t, BuildPlatformMonth(rows), BuildPlatformMonth(reversed))

	pr := BuildPlatformMonth(rows)
	require.Len(t, pr.Campaigns, 2)
	assert.Equal(t, "A", pr.Campaigns[0].Name)
	assert.Equal(t, "B", pr.Campaigns[1].Name)
}

func TestBuildPlatformMonthAds(t *testing.T) {
	rows := []models.Row{
		{Date: day(1), Platform: "meta", Campaign: "C", Ad: "banner-1",
			Counters: models.Counters{Cost: 100, Impressions: 1000, Clicks: 10, Conversions: 1}},
		{Date: day(1), Platform: "meta", Campaign: "C", Ad: "banner-2",
			Counters: models.Counters{Cost: 200, Impressions: 2000, Clicks: 20, Conversions: 2}},
	}
	pr := BuildPlatformMonth(rows)
	require.Len(t, pr.Campaigns, 1)
	require.Len(t, pr.Campaigns[0].Ads, 2)
	assert.Equal(t, "banner-1", pr.Campaigns[0].Ads[0].Name)

	// When ads are fully enumerated, their sum matches the campaign total.
	var adSum models.Counters
	for _, ad := range pr.Campaigns[0].Ads {
		adSum.Add(ad.Counters)
	}
	assert.Equal(t, pr.Campaigns[0].Counters, adSum)
}

func TestBuildPlatformMonthTraffic(t *testing.T) {
	rows := []models.Row{
		{Date: day(1), Platform: "line", Campaign: "C", ResultType: "友だち追加", Results: 12,
			Counters: models.Counters{Cost: 100}},
		{Date: day(2), Platform: "line", Campaign: "C", ResultType: "友だち追加", Results: 8,
			Counters: models.Counters{Cost: 100}},
	}
	pr := BuildPlatformMonth(rows)
	require.NotNil(t, pr.Traffic)
	assert.Equal(t, "友だち追加", pr.Traffic.ResultType)
	assert.Equal(t, int64(20), pr.Traffic.Results)
}

func day(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }

func TestBuildWeeks(t *testing.T) {
	google := BuildPlatformMonth([]models.Row{
		row(1, "A", 1000, 10000, 100, 5),
		row(8, "A", 1500, 12000, 120, 6),
	})
	meta := BuildPlatformMonth([]models.Row{
		{Date: day(1), Platform: "meta", Campaign: "M",
			Counters: models.Counters{Cost: 500, Impressions: 5000, Clicks: 50, Conversions: 2}},
	})

	weeks, err := BuildWeeks("2024-03", map[string]*models.PlatformRecord{
		"google": google,
		"meta":   meta,
	})
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	w1 := weeks["week1"]
	require.NotNil(t, w1)
	assert.Equal(t, "2024-03-01 ~ 2024-03-07", w1.Dates)
	assert.Equal(t, models.Counters{Cost: 1500, Impressions: 15000, Clicks: 150, Conversions: 7}, w1.Summary.Counters)
	require.Len(t, w1.Daily, 1)
	assert.Equal(t, "2024-03-01", w1.Daily[0].Date)
	assert.Equal(t, "金", w1.Daily[0].DayOfWeek)
	assert.Equal(t, int64(1500), w1.Daily[0].Cost)
	assert.Equal(t, int64(1000), w1.Platforms["google"].Cost)
	assert.Equal(t, int64(500), w1.Platforms["meta"].Cost)

	w2 := weeks["week2"]
	require.NotNil(t, w2)
	assert.Equal(t, models.Counters{Cost: 1500, Impressions: 12000, Clicks: 120, Conversions: 6}, w2.Summary.Counters)
}

func TestBuildWeeksRollupConsistency(t *testing.T) {
	google := BuildPlatformMonth([]models.Row{
		row(1, "A", 1000, 10000, 100, 5),
		row(9, "A", 700, 7000, 70, 3),
		row(20, "B", 300, 3000, 30, 1),
		row(31, "B", 100, 1000, 10, 0),
	})
	weeks, err := BuildWeeks("2024-03", map[string]*models.PlatformRecord{"google": google})
	require.NoError(t, err)

	var weekTotal models.Counters
	for _, w := range weeks {
		var dailyTotal models.Counters
		for _, d := range w.Daily {
			dailyTotal.Add(d.Counters)
		}
		assert.Equal(t, w.Summary.Counters, dailyTotal, "week summary must equal its daily sum")

		var platformTotal models.Counters
		for _, p := range w.Platforms {
			platformTotal.Add(p.Counters)
		}
		assert.Equal(t, w.Summary.Counters, platformTotal, "week summary must equal its platform sum")

		weekTotal.Add(w.Summary.Counters)
	}
	assert.Equal(t, google.Counters, weekTotal, "weeks must sum to the month total")
	assert.Equal(t, google.Counters, MonthCounters(map[string]*models.PlatformRecord{"google": google}))
}

func TestMonthCountersCommutative(t *testing.T) {
	a := BuildPlatformMonth([]models.Row{row(1, "A", 1000, 10000, 100, 5)})
	b := BuildPlatformMonth([]models.Row{row(2, "B", 500, 5000, 50, 2)})

	ab := MonthCounters(map[string]*models.PlatformRecord{"google": a, "meta": b})
	ba := MonthCounters(map[string]*models.PlatformRecord{"meta": b, "google": a})
	assert.Equal(t, ab, ba)
}
