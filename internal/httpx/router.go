package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adreport/adreport-etl/internal/ingest"
	"github.com/adreport/adreport-etl/internal/merge"
	"github.com/adreport/adreport-etl/internal/models"
	"github.com/adreport/adreport-etl/internal/store"
	"github.com/adreport/adreport-etl/internal/utils"
)

type runRequest struct {
	CSVs   map[string]string `json:"csv"`
	Client models.Client     `json:"client"`
	Merge  bool              `json:"merge"`
}

func NewRouter(log *slog.Logger, runner *ingest.Runner, st *store.FileStore) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", 400)
			return
		}
		if len(req.CSVs) == 0 {
			http.Error(w, "csv map required", 400)
			return
		}
		res, err := runner.Run(r.Context(), ingest.Options{CSVs: req.CSVs, Client: req.Client, Merge: req.Merge})
		if err != nil {
			var ce *merge.ConflictError
			if errors.As(err, &ce) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, res)
	})

	mux.Get("/report/data", func(w http.ResponseWriter, r *http.Request) {
		d, err := st.Load()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, d)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}
