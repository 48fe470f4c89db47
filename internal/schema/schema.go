// Package schema maps platform-specific CSV headers onto the canonical field
// set. Each platform carries an ordered alias list per canonical field,
// covering the Japanese and English header variants the ad networks export;
// the first alias that matches a header wins.
package schema

import (
	"fmt"
	"strings"
)

// Canonical field names.
const (
	FieldDate        = "date"
	FieldCampaign    = "campaign"
	FieldCost        = "cost"
	FieldImpressions = "impressions"
	FieldClicks      = "clicks"
	FieldConversions = "conversions"
	FieldAd          = "ad"
	FieldResultType  = "resultType"
	FieldResults     = "results"
)

var requiredFields = []string{
	FieldDate, FieldCampaign, FieldCost, FieldImpressions, FieldClicks, FieldConversions,
}

var optionalFields = []string{FieldAd, FieldResultType, FieldResults}

// SchemaError reports a required canonical field with no matching header.
// It aborts ingestion for the one platform it names, not the whole run.
type SchemaError struct {
	Platform string
	Field    string
	Header   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: platform %s: no column for required field %q in header %v",
		e.Platform, e.Field, e.Header)
}

// ColumnMap resolves canonical fields to source column indexes.
// Optional fields are -1 when the export has no matching column.
type ColumnMap struct {
	Date        int
	Campaign    int
	Cost        int
	Impressions int
	Clicks      int
	Conversions int
	Ad          int
	ResultType  int
	Results     int
}

// AliasTable is the ordered alias list per canonical field for one platform.
type AliasTable map[string][]string

var defaultTables = map[string]AliasTable{
	"google": {
		FieldDate:        {"日", "Day", "Date", "日付"},
		FieldCampaign:    {"キャンペーン", "Campaign", "Campaign name"},
		FieldCost:        {"費用", "Cost", "費用（JPY）", "Spend"},
		FieldImpressions: {"表示回数", "Impr.", "Impressions", "インプレッション"},
		FieldClicks:      {"クリック数", "Clicks", "クリック"},
		FieldConversions: {"コンバージョン", "Conversions", "Conv.", "すべてのコンバージョン"},
		FieldAd:          {"広告", "広告名", "Ad name"},
	},
	"meta": {
		FieldDate:        {"日", "Day", "Date", "日付", "Reporting starts"},
		FieldCampaign:    {"広告セット名", "キャンペーン名", "Campaign name", "Campaign Name", "キャンペーン"},
		FieldCost:        {"消化金額 (JPY)", "消化金額", "Amount spent", "Amount Spent", "費用"},
		FieldImpressions: {"インプレッション", "Impressions", "リーチ"},
		FieldClicks:      {"クリック(すべて)", "クリック（すべて）", "リンクのクリック", "Link clicks", "Clicks (all)"},
		FieldConversions: {"結果", "Results", "コンバージョン", "Conversions"},
		FieldAd:          {"広告名", "Ad name", "Ad Name"},
		FieldResultType:  {"結果の種類", "Result type", "Result Type"},
		FieldResults:     {"結果", "Results"},
	},
	"yahoo": {
		FieldDate:        {"日", "Day", "Date", "日付"},
		FieldCampaign:    {"キャンペーン名", "Campaign Name", "キャンペーン"},
		FieldCost:        {"コスト（税込）", "Cost", "費用", "コスト"},
		FieldImpressions: {"インプレッション数", "Impressions", "表示回数"},
		FieldClicks:      {"クリック数", "Clicks", "クリック"},
		FieldConversions: {"コンバージョン数", "Conversions", "コンバージョン"},
	},
	"line": {
		FieldDate:        {"日付", "Date", "日"},
		FieldCampaign:    {"キャンペーン名", "Campaign Name", "キャンペーン"},
		FieldCost:        {"消化金額", "Cost", "費用"},
		FieldImpressions: {"インプレッション", "Impressions", "imp"},
		FieldClicks:      {"クリック数", "Clicks", "クリック"},
		FieldConversions: {"コンバージョン", "Conversions", "CV"},
		FieldResultType:  {"結果の種類", "Result type"},
		FieldResults:     {"結果", "Results"},
	},
}

// Registry holds the alias tables in effect for a run: the defaults,
// optionally overlaid with operator-supplied aliases.
type Registry struct {
	tables map[string]AliasTable
}

func NewRegistry() *Registry {
	tables := make(map[string]AliasTable, len(defaultTables))
	for platform, table := range defaultTables {
		t := make(AliasTable, len(table))
		for field, aliases := range table {
			t[field] = append([]string(nil), aliases...)
		}
		tables[platform] = t
	}
	return &Registry{tables: tables}
}

// Override replaces alias lists per field. Fields not present in the
// override keep their defaults; unknown platforms get a fresh table.
func (r *Registry) Override(platform string, table AliasTable) {
	t, ok := r.tables[platform]
	if !ok {
		t = make(AliasTable)
		r.tables[platform] = t
	}
	for field, aliases := range table {
		t[field] = append([]string(nil), aliases...)
	}
}

// Resolve maps a header row to column indexes for the given platform.
func (r *Registry) Resolve(platform string, header []string) (ColumnMap, error) {
	table, ok := r.tables[platform]
	if !ok {
		return ColumnMap{}, fmt.Errorf("schema: unknown platform %q", platform)
	}

	find := func(field string) int {
		for _, alias := range table[field] {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), alias) {
					return i
				}
			}
		}
		return -1
	}

	indexes := make(map[string]int, len(requiredFields)+len(optionalFields))
	for _, field := range requiredFields {
		idx := find(field)
		if idx < 0 {
			return ColumnMap{}, &SchemaError{Platform: platform, Field: field, Header: header}
		}
		indexes[field] = idx
	}
	for _, field := range optionalFields {
		indexes[field] = find(field)
	}

	return ColumnMap{
		Date:        indexes[FieldDate],
		Campaign:    indexes[FieldCampaign],
		Cost:        indexes[FieldCost],
		Impressions: indexes[FieldImpressions],
		Clicks:      indexes[FieldClicks],
		Conversions: indexes[FieldConversions],
		Ad:          indexes[FieldAd],
		ResultType:  indexes[FieldResultType],
		Results:     indexes[FieldResults],
	}, nil
}
