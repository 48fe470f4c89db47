package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/adreport/adreport-etl/internal/config"
	"github.com/adreport/adreport-etl/internal/httpx"
	"github.com/adreport/adreport-etl/internal/ingest"
	"github.com/adreport/adreport-etl/internal/schema"
	"github.com/adreport/adreport-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	st := store.New(cfg.DataPath)
	runner := ingest.NewRunner(schema.NewRegistry(), st, logger)
	r := httpx.NewRouter(logger, runner, st)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("data", cfg.DataPath))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
