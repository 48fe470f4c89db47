package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adreport/adreport-etl/internal/models"
)

func sampleDataset() *models.Dataset {
	d := models.NewDataset(models.Client{Name: "株式会社ABC", ID: "abc"})
	m := models.NewMonthRecord()
	m.Summary = models.Summary{
		Counters: models.Counters{Cost: 2500, Impressions: 22000, Clicks: 220, Conversions: 11},
		CTR:      1.0, CVR: 5.0, CPC: 11, CPM: 114, CPA: 227,
	}
	m.Platforms["google"] = &models.PlatformRecord{
		Summary:   m.Summary,
		Campaigns: []models.CampaignRecord{{Name: "Campaign A", Counters: m.Summary.Counters, CPA: 227}},
	}
	d.Months["2024-03"] = m
	return d
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleDataset()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"2024-03"}, f.GetSheetList())

	total, err := f.GetCellValue("2024-03", "A2")
	require.NoError(t, err)
	assert.Equal(t, "全体", total)

	cost, err := f.GetCellValue("2024-03", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2500", cost)

	campaign, err := f.GetCellValue("2024-03", "A4")
	require.NoError(t, err)
	assert.Contains(t, campaign, "Campaign A")
}

func TestWriteWorkbookEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteWorkbook(path, models.NewDataset(models.Client{}))
	assert.Error(t, err)
}
