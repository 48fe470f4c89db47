// Package parse turns normalized CSV rows into typed daily records, coercing
// locale-formatted numbers and dates. A row that cannot be coerced is dropped
// with a warning; one bad export line never blocks the rest of the file.
package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/schema"
)

// ParseError reports a single unparseable cell. It is row-scoped: the caller
// drops the row and keeps going.
type ParseError struct {
	Line  int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: line %d: field %s: cannot parse %q", e.Line, e.Field, e.Value)
}

var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006年01月02日",
	"01/02/2006",
	"02/01/2006",
	"2006.01.02",
}

// Values treated as zero rather than as parse failures; ad platforms emit
// these for metric cells with no activity.
var emptyTokens = map[string]bool{"": true, "-": true, "--": true, "N/A": true, "n/a": true, "nan": true}

// Totals/footer markers in the date column.
var totalTokens = map[string]bool{"": true, "合計": true, "Total": true, "総計": true}

var numberStripper = strings.NewReplacer(
	",", "", "¥", "", "￥", "", "$", "", "%", "", "円", "", " ", "", " ", "",
)

// Number coerces a locale-formatted metric cell to a whole number,
// stripping currency symbols, percent signs and grouping separators.
func Number(raw string) (int64, error) {
	cleaned := numberStripper.Replace(strings.TrimSpace(raw))
	if emptyTokens[cleaned] {
		return 0, nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return int64(math.Round(f)), nil
}

// Date coerces the date-token orderings the ad networks use and normalizes
// to a UTC midnight time. Layouts are tried in a fixed order, so ambiguous
// day/month strings resolve deterministically.
func Date(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}

// Rows converts raw CSV records into daily rows for one platform using the
// resolved column map. records excludes the header row; firstLine is the
// 1-based file line of the first record, for warnings. Unparseable rows are
// dropped and reported in the returned warnings; dropped counts only those,
// not rows kept with a clamp warning.
func Rows(platform string, cm schema.ColumnMap, records [][]string, firstLine int) (rows []models.Row, warnings []string, dropped int) {

	cell := func(rec []string, idx int) string {
		if idx < 0 || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	for i, rec := range records {
		line := firstLine + i

		dateCell := cell(rec, cm.Date)
		if totalTokens[dateCell] {
			continue
		}
		date, err := Date(dateCell)
		if err != nil {
			warnings = append(warnings, (&ParseError{Line: line, Field: schema.FieldDate, Value: dateCell}).Error())
			dropped++
			continue
		}

		row := models.Row{
			Date:     date,
			Platform: platform,
			Campaign: cell(rec, cm.Campaign),
			Ad:       cell(rec, cm.Ad),
		}

		counters := []struct {
			field string
			raw   string
			dst   *int64
		}{
			{schema.FieldCost, cell(rec, cm.Cost), &row.Cost},
			{schema.FieldImpressions, cell(rec, cm.Impressions), &row.Impressions},
			{schema.FieldClicks, cell(rec, cm.Clicks), &row.Clicks},
			{schema.FieldConversions, cell(rec, cm.Conversions), &row.Conversions},
		}
		bad := false
		for _, c := range counters {
			v, err := Number(c.raw)
			if err != nil {
				warnings = append(warnings, (&ParseError{Line: line, Field: c.field, Value: c.raw}).Error())
				bad = true
				break
			}
			if v < 0 {
				// Export artifacts (credits, corrections) show up as negatives;
				// clamp rather than reject so the rest of the row survives.
				warnings = append(warnings, fmt.Sprintf("parse: line %d: field %s: negative value %d clamped to 0", line, c.field, v))
				v = 0
			}
			*c.dst = v
		}
		if bad {
			dropped++
			continue
		}

		if cm.ResultType >= 0 {
			row.ResultType = cell(rec, cm.ResultType)
		}
		if cm.Results >= 0 {
			if v, err := Number(cell(rec, cm.Results)); err == nil && v > 0 {
				row.Results = v
			}
		}

		rows = append(rows, row)
	}
	return rows, warnings, dropped
}
