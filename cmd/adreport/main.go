// Command adreport converts per-platform ad CSV exports into the canonical
// report dataset (data.json), optionally merging into an existing output and
// optionally writing an XLSX summary workbook.
//
//	adreport -google csv/google.csv -meta csv/meta.csv \
//	  -client "株式会社ABC" -client-id abc -o ../client/data.json -merge
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/adreport/adreport-etl/internal/export"
	"github.com/adreport/adreport-etl/internal/ingest"
	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/schema"
	"github.com/adreport/adreport-etl/internal/store"
)

func main() {
	var (
		googleCSV  = flag.String("google", "", "Google Ads CSV path")
		metaCSV    = flag.String("meta", "", "Meta (Facebook/Instagram) Ads CSV path")
		yahooCSV   = flag.String("yahoo", "", "Yahoo! Ads CSV path")
		lineCSV    = flag.String("line", "", "LINE Ads CSV path")
		clientName = flag.String("client", "", "client display name")
		clientID   = flag.String("client-id", "client", "client id")
		output     = flag.String("o", "data.json", "output data.json path")
		mergeFlag  = flag.Bool("merge", false, "merge into the existing output instead of replacing it")
		xlsxPath   = flag.String("xlsx", "", "also write an XLSX summary workbook to this path")
		aliases    = flag.String("aliases", "", "JSON file with column alias overrides per platform")
		logLevel   = flag.String("log-level", "info", "log level (debug|info|warn|error)")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *logLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	csvs := map[string]string{}
	for platform, path := range map[string]*string{
		models.PlatformGoogle: googleCSV,
		models.PlatformMeta:   metaCSV,
		models.PlatformYahoo:  yahooCSV,
		models.PlatformLine:   lineCSV,
	} {
		if *path != "" {
			csvs[platform] = *path
		}
	}
	if len(csvs) == 0 {
		fmt.Fprintln(os.Stderr, "at least one platform CSV is required (-google, -meta, -yahoo, -line)")
		flag.Usage()
		os.Exit(2)
	}

	reg := schema.NewRegistry()
	if *aliases != "" {
		if err := loadAliases(reg, *aliases); err != nil {
			logger.Error("alias overrides", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	st := store.New(*output)
	runner := ingest.NewRunner(reg, st, logger)

	res, err := runner.Run(context.Background(), ingest.Options{
		CSVs:   csvs,
		Client: models.Client{Name: *clientName, ID: *clientID},
		Merge:  *mergeFlag,
	})
	if err != nil {
		logger.Error("run failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if *xlsxPath != "" {
		d, err := st.Load()
		if err == nil {
			err = export.WriteWorkbook(*xlsxPath, d)
		}
		if err != nil {
			logger.Error("xlsx export failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
		logger.Info("xlsx written", slog.String("path", *xlsxPath))
	}

	for platform, reason := range res.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", platform, reason)
	}
	fmt.Printf("wrote %s\n", *output)
	fmt.Printf("  months:    %v\n", res.Months)
	fmt.Printf("  platforms: %v\n", res.Platforms)
	fmt.Printf("  rows:      %d (%d warning(s))\n", res.Rows, len(res.Warnings))
}

func loadAliases(reg *schema.Registry, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var overrides map[string]schema.AliasTable
	if err := json.Unmarshal(b, &overrides); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	for platform, table := range overrides {
		reg.Override(platform, table)
	}
	return nil
}
