// Package ingest reads per-platform CSV exports, runs them through the
// schema/parse pipeline and merges the result into the persisted dataset.
// A schema failure skips one platform; a row failure skips one row; the rest
// of the run continues either way.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/adreport/adreport-etl/internal/merge"
	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/parse"
	"github.com/adreport/adreport-etl/internal/period"
	"github.com/adreport/adreport-etl/internal/schema"
	"github.com/adreport/adreport-etl/internal/store"
)

// Preamble rows (Google Ads title/period lines) carry fewer fields than a
// real header; anything under this many commas is skipped.
const headerMinFields = 4

type Runner struct {
	reg *schema.Registry
	st  *store.FileStore
	log *slog.Logger
}

func NewRunner(reg *schema.Registry, st *store.FileStore, log *slog.Logger) *Runner {
	return &Runner{reg: reg, st: st, log: log}
}

// Options describes one run: which platform exports to read, who the client
// is, and whether to merge into the existing output or replace it.
type Options struct {
	CSVs   map[string]string // platform id -> CSV path
	Client models.Client
	Merge  bool
}

// Result summarizes what a run did, for the operator.
type Result struct {
	Months    []string          `json:"months"` // months this run touched
	Platforms []string          `json:"platforms"`
	Rows      int               `json:"rows"`
	Warnings  []string          `json:"warnings,omitempty"`
	Skipped   map[string]string `json:"skipped,omitempty"` // platform -> reason
}

// Run executes one full ingest: read + parse every platform CSV, merge into
// the prior dataset (or a fresh one), recompute, and commit the output.
// Nothing is written when a fatal error occurs.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	runsTotal.Inc()

	if len(opts.CSVs) == 0 {
		return nil, errors.New("ingest: no platform CSVs supplied")
	}

	base := models.NewDataset(opts.Client)
	if opts.Merge {
		existing, err := r.st.Load()
		if err != nil {
			return nil, err
		}
		if err := merge.Validate(existing); err != nil {
			return nil, err
		}
		base = existing
		if opts.Client.Name != "" {
			base.Client.Name = opts.Client.Name
		}
		if opts.Client.ID != "" {
			base.Client.ID = opts.Client.ID
		}
	}

	result := &Result{Skipped: map[string]string{}}
	incoming := make(map[string][]models.Row)

	platforms := make([]string, 0, len(opts.CSVs))
	for platform := range opts.CSVs {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, warnings, dropped, err := r.readPlatform(platform, opts.CSVs[platform])
		if err != nil {
			var se *schema.SchemaError
			if errors.As(err, &se) {
				platformsSkipped.WithLabelValues(platform).Inc()
				result.Skipped[platform] = err.Error()
				r.log.Error("platform skipped",
					slog.String("platform", platform),
					slog.String("err", err.Error()))
				continue
			}
			return nil, err
		}
		rowsParsed.WithLabelValues(platform).Add(float64(len(rows)))
		rowsDropped.WithLabelValues(platform).Add(float64(dropped))
		valuesClamped.WithLabelValues(platform).Add(float64(len(warnings) - dropped))
		for _, w := range warnings {
			r.log.Warn("row dropped or adjusted", slog.String("platform", platform), slog.String("warn", w))
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Rows += len(rows)
		result.Platforms = append(result.Platforms, platform)
		incoming[platform] = rows
	}

	if len(incoming) == 0 {
		return nil, fmt.Errorf("ingest: no usable platform data (%d platform(s) skipped)", len(result.Skipped))
	}

	merged, err := merge.Merge(base, incoming)
	if err != nil {
		return nil, err
	}
	if err := r.st.Save(merged); err != nil {
		return nil, err
	}

	touched := make(map[string]bool)
	for _, rows := range incoming {
		for _, row := range rows {
			touched[period.MonthKey(row.Date)] = true
		}
	}
	for monthKey := range touched {
		result.Months = append(result.Months, monthKey)
	}
	sort.Strings(result.Months)

	r.log.Info("ingest complete",
		slog.String("output", r.st.Path()),
		slog.Int("rows", result.Rows),
		slog.Int("warnings", len(result.Warnings)),
		slog.Any("platforms", result.Platforms),
		slog.Any("months", result.Months))
	return result, nil
}

func (r *Runner) readPlatform(platform, path string) ([]models.Row, []string, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	text, err := decode(raw)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("ingest: decode %s: %w", path, err)
	}

	lines := strings.Split(text, "\n")
	skip := preambleLines(lines)
	if skip >= len(lines) {
		return nil, nil, 0, fmt.Errorf("ingest: %s: no CSV header found", path)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[skip:], "\n")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("ingest: %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, 0, fmt.Errorf("ingest: %s: empty CSV", path)
	}

	cm, err := r.reg.Resolve(platform, records[0])
	if err != nil {
		return nil, nil, 0, err
	}

	rows, warnings, dropped := parse.Rows(platform, cm, records[1:], skip+2)
	return rows, warnings, dropped, nil
}

// decode strips a UTF-8 BOM and falls back to Shift_JIS when the bytes are
// not valid UTF-8; Yahoo and LINE exports still ship as CP932.
func decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("not UTF-8 and not Shift_JIS: %w", err)
	}
	return string(decoded), nil
}

// preambleLines counts the title/period/blank lines some exports put above
// the real header row.
func preambleLines(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Count(trimmed, ",") >= headerMinFields-1 {
			return i
		}
	}
	return len(lines)
}
