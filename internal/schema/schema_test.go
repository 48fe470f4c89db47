package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJapaneseGoogleExport(t *testing.T) {
	header := []string{"日", "キャンペーン", "費用", "表示回数", "クリック数", "コンバージョン"}

	cm, err := NewRegistry().Resolve("google", header)
	require.NoError(t, err)
	assert.Equal(t, 0, cm.Date)
	assert.Equal(t, 1, cm.Campaign)
	assert.Equal(t, 2, cm.Cost)
	assert.Equal(t, 3, cm.Impressions)
	assert.Equal(t, 4, cm.Clicks)
	assert.Equal(t, 5, cm.Conversions)
	assert.Equal(t, -1, cm.Ad)
	assert.Equal(t, -1, cm.ResultType)
}

func TestResolveEnglishHeadersAnyColumnOrder(t *testing.T) {
	header := []string{"Clicks", "Cost", "Campaign", "Conversions", "Date", "Impressions"}

	cm, err := NewRegistry().Resolve("google", header)
	require.NoError(t, err)
	assert.Equal(t, 4, cm.Date)
	assert.Equal(t, 2, cm.Campaign)
	assert.Equal(t, 1, cm.Cost)
	assert.Equal(t, 5, cm.Impressions)
	assert.Equal(t, 0, cm.Clicks)
	assert.Equal(t, 3, cm.Conversions)
}

func TestResolveIsCaseAndSpaceInsensitive(t *testing.T) {
	header := []string{" date ", "CAMPAIGN", "cost", "impressions", "clicks", "conversions"}

	_, err := NewRegistry().Resolve("google", header)
	assert.NoError(t, err)
}

func TestFirstAliasWins(t *testing.T) {
	// "日" (first alias) beats "Date" even though both are present.
	header := []string{"Date", "日", "キャンペーン", "費用", "表示回数", "クリック数", "コンバージョン"}

	cm, err := NewRegistry().Resolve("google", header)
	require.NoError(t, err)
	assert.Equal(t, 1, cm.Date)
}

func TestMissingRequiredColumn(t *testing.T) {
	header := []string{"日", "キャンペーン", "表示回数", "クリック数", "コンバージョン"}

	_, err := NewRegistry().Resolve("google", header)
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "google", se.Platform)
	assert.Equal(t, FieldCost, se.Field)
	assert.Contains(t, se.Error(), "cost")
	assert.Contains(t, se.Error(), "google")
}

func TestSecondaryObjectiveColumns(t *testing.T) {
	header := []string{"日", "キャンペーン名", "消化金額", "インプレッション", "リンクのクリック", "結果", "結果の種類"}

	cm, err := NewRegistry().Resolve("meta", header)
	require.NoError(t, err)
	assert.Equal(t, 6, cm.ResultType)
	assert.Equal(t, 5, cm.Results)
	// Conversions and results share the 結果 column on meta exports.
	assert.Equal(t, 5, cm.Conversions)
}

func TestUnknownPlatform(t *testing.T) {
	_, err := NewRegistry().Resolve("tiktok", []string{"Date"})
	assert.Error(t, err)
}

func TestOverrideReplacesAliasList(t *testing.T) {
	r := NewRegistry()
	r.Override("google", AliasTable{FieldCost: {"Media Spend"}})

	header := []string{"Date", "Campaign", "Media Spend", "Impressions", "Clicks", "Conversions"}
	cm, err := r.Resolve("google", header)
	require.NoError(t, err)
	assert.Equal(t, 2, cm.Cost)

	// The old default alias no longer matches once overridden.
	header[2] = "費用"
	_, err = r.Resolve("google", header)
	assert.Error(t, err)

	// Untouched fields keep their defaults.
	header[2] = "Media Spend"
	header[0] = "日"
	_, err = r.Resolve("google", header)
	assert.NoError(t, err)
}
