// Package export renders the canonical dataset as an XLSX workbook, one
// sheet per month, for clients who want the report re-shared as a
// spreadsheet rather than the web view.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/adreport/adreport-etl/internal/models"
)

var summaryHeader = []interface{}{
	"", "費用", "表示回数", "クリック数", "CV数", "CTR(%)", "CVR(%)", "CPC", "CPM", "CPA",
}

// WriteWorkbook writes one sheet per month, chronologically ordered, each
// holding the month summary, the per-platform totals and every campaign.
func WriteWorkbook(path string, d *models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	monthKeys := make([]string, 0, len(d.Months))
	for k := range d.Months {
		monthKeys = append(monthKeys, k)
	}
	sort.Strings(monthKeys)
	if len(monthKeys) == 0 {
		return fmt.Errorf("export: dataset has no months")
	}

	for _, monthKey := range monthKeys {
		if _, err := f.NewSheet(monthKey); err != nil {
			return fmt.Errorf("export: sheet %s: %w", monthKey, err)
		}
		if err := writeMonth(f, monthKey, d.Months[monthKey]); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeMonth(f *excelize.File, sheet string, m *models.MonthRecord) error {
	row := 1
	set := func(cells []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		row++
		return nil
	}

	if err := set(summaryHeader); err != nil {
		return fmt.Errorf("export: sheet %s: %w", sheet, err)
	}
	if err := set(summaryCells("全体", m.Summary)); err != nil {
		return fmt.Errorf("export: sheet %s: %w", sheet, err)
	}

	platforms := make([]string, 0, len(m.Platforms))
	for p := range m.Platforms {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		pr := m.Platforms[platform]
		if err := set(summaryCells(platform, pr.Summary)); err != nil {
			return fmt.Errorf("export: sheet %s: %w", sheet, err)
		}
		for _, c := range pr.Campaigns {
			cells := []interface{}{
				"  " + c.Name, c.Cost, c.Impressions, c.Clicks, c.Conversions, "", "", "", "", c.CPA,
			}
			if err := set(cells); err != nil {
				return fmt.Errorf("export: sheet %s: %w", sheet, err)
			}
		}
	}
	return nil
}

func summaryCells(label string, s models.Summary) []interface{} {
	return []interface{}{
		label, s.Cost, s.Impressions, s.Clicks, s.Conversions, s.CTR, s.CVR, s.CPC, s.CPM, s.CPA,
	}
}
