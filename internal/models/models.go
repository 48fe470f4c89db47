package models

import "time"

// Canonical platform ids. Display labels are whatever the CSVs carry;
// these keys are what the dataset and the alias tables are indexed by.
const (
	PlatformGoogle = "google"
	PlatformMeta   = "meta"
	PlatformYahoo  = "yahoo"
	PlatformLine   = "line"
)

var Platforms = []string{PlatformGoogle, PlatformMeta, PlatformYahoo, PlatformLine}

type Client struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Counters are the four raw additive metrics every level of the dataset
// rolls up. Cost is in whole currency units (JPY has no minor unit).
type Counters struct {
	Cost        int64 `json:"cost"`
	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`
}

func (c *Counters) Add(o Counters) {
	c.Cost += o.Cost
	c.Impressions += o.Impressions
	c.Clicks += o.Clicks
	c.Conversions += o.Conversions
}

// Summary is Counters plus the displayed derived metrics. Derived fields are
// recomputed from the raw counters on every run and are never authoritative.
type Summary struct {
	Counters
	CTR float64 `json:"ctr"`
	CVR float64 `json:"cvr"`
	CPC int64   `json:"cpc"`
	CPM int64   `json:"cpm"`
	CPA int64   `json:"cpa"`
}

// Changes maps metric name to a period-over-period percent difference.
// A nil entry means "no valid baseline", which is distinct from zero change.
type Changes map[string]*float64

func (c Changes) Clone() Changes {
	if c == nil {
		return nil
	}
	out := make(Changes, len(c))
	for k, v := range c {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}

type DailyRecord struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	Counters
}

type AdRecord struct {
	Name string `json:"name"`
	Counters
}

type CampaignRecord struct {
	Name string `json:"name"`
	Counters
	CPA int64      `json:"cpa"`
	Ads []AdRecord `json:"ads,omitempty"`
}

// SecondaryObjective carries the result-type breakdown some platforms
// (meta, line) export alongside conversions.
type SecondaryObjective struct {
	ResultType string `json:"resultType"`
	Results    int64  `json:"results"`
}

// PlatformRecord is one platform's month-scoped subtree. Daily is the
// platform's own day ledger; it is what lets a single-platform re-import
// rebuild the cross-platform week rollups without touching other platforms.
type PlatformRecord struct {
	Summary
	CPAChange *float64            `json:"cpaChange"`
	Campaigns []CampaignRecord    `json:"campaigns"`
	Daily     []DailyRecord       `json:"daily"`
	Traffic   *SecondaryObjective `json:"traffic,omitempty"`
}

func (p *PlatformRecord) Clone() *PlatformRecord {
	if p == nil {
		return nil
	}
	out := *p
	if p.CPAChange != nil {
		f := *p.CPAChange
		out.CPAChange = &f
	}
	out.Campaigns = make([]CampaignRecord, len(p.Campaigns))
	for i, c := range p.Campaigns {
		cc := c
		cc.Ads = append([]AdRecord(nil), c.Ads...)
		out.Campaigns[i] = cc
	}
	out.Daily = append([]DailyRecord(nil), p.Daily...)
	if p.Traffic != nil {
		t := *p.Traffic
		out.Traffic = &t
	}
	return &out
}

type WeekRecord struct {
	Dates     string             `json:"dates"`
	Summary   Summary            `json:"summary"`
	Daily     []DailyRecord      `json:"daily"`
	Platforms map[string]Summary `json:"platforms,omitempty"`
}

func (w *WeekRecord) Clone() *WeekRecord {
	if w == nil {
		return nil
	}
	out := *w
	out.Daily = append([]DailyRecord(nil), w.Daily...)
	if w.Platforms != nil {
		out.Platforms = make(map[string]Summary, len(w.Platforms))
		for k, v := range w.Platforms {
			out.Platforms[k] = v
		}
	}
	return &out
}

type MonthRecord struct {
	Summary             Summary                    `json:"summary"`
	PreviousMonthChange Changes                    `json:"previousMonthChange"`
	Platforms           map[string]*PlatformRecord `json:"platforms"`
	Weeks               map[string]*WeekRecord     `json:"weeks"`
}

func (m *MonthRecord) Clone() *MonthRecord {
	if m == nil {
		return nil
	}
	out := &MonthRecord{
		Summary:             m.Summary,
		PreviousMonthChange: m.PreviousMonthChange.Clone(),
		Platforms:           make(map[string]*PlatformRecord, len(m.Platforms)),
		Weeks:               make(map[string]*WeekRecord, len(m.Weeks)),
	}
	for k, v := range m.Platforms {
		out.Platforms[k] = v.Clone()
	}
	for k, v := range m.Weeks {
		out.Weeks[k] = v.Clone()
	}
	return out
}

func NewMonthRecord() *MonthRecord {
	return &MonthRecord{
		Platforms: make(map[string]*PlatformRecord),
		Weeks:     make(map[string]*WeekRecord),
	}
}

// Dataset is the whole persisted document: loaded at run start, mutated in
// memory, rewritten wholesale at run end. Month keys are "YYYY-MM", so
// lexicographic order is chronological order.
type Dataset struct {
	Client Client                  `json:"client"`
	Months map[string]*MonthRecord `json:"months"`
}

func NewDataset(client Client) *Dataset {
	return &Dataset{Client: client, Months: make(map[string]*MonthRecord)}
}

func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Client: d.Client, Months: make(map[string]*MonthRecord, len(d.Months))}
	for k, v := range d.Months {
		out.Months[k] = v.Clone()
	}
	return out
}

// Row is one parsed (date, campaign) observation from a platform export,
// before any aggregation.
type Row struct {
	Date       time.Time
	Platform   string
	Campaign   string
	Ad         string
	ResultType string
	Results    int64
	Counters
}
