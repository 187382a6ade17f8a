package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/videocraft/videocraft-core/internal/session"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())
	r.Use(LoopbackGuard())

	r.Get("/health", healthHandler(cfg))

	r.Route("/video", func(r chi.Router) {
		r.Get("/", getVideoHandler(cfg))
		r.Put("/", loadVideoHandler(cfg))
		r.Delete("/", clearVideoHandler(cfg))
	})

	r.Route("/editing", func(r chi.Router) {
		r.Get("/", getEditingHandler(cfg))
		r.Get("/stats", getStatsHandler(cfg))
		r.Put("/trim", setTrimHandler(cfg))
		r.Delete("/trim", resetTrimHandler(cfg))
		r.Post("/cuts", addCutHandler(cfg))
		r.Delete("/cuts", removeCutHandler(cfg))
		r.Delete("/cuts/all", clearCutsHandler(cfg))
		r.Put("/filters", setFiltersHandler(cfg))
		r.Post("/filters", addFilterHandler(cfg))
		r.Delete("/filters/{id}", removeFilterHandler(cfg))
	})

	r.Get("/exports", listExportsHandler(cfg))
	r.Post("/exports/{kind}", exportHandler(cfg))
	r.Get("/exports/{kind}/stream", exportStreamHandler(cfg))

	r.Get("/artifacts/{id}", artifactHandler(cfg))
	r.Head("/artifacts/{id}", artifactHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, loaded := cfg.Session.Video()
		resp := HealthResponse{
			Status:      "ok",
			Version:     Version,
			UptimeS:     int64(time.Since(cfg.StartTime).Seconds()),
			VideoLoaded: loaded,
		}
		if cfg.Probe != nil {
			resp.Backend = cfg.Probe.Get(r.Context())
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// writeSessionError maps session errors onto HTTP responses.
func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNoVideo) {
		WriteError(w, http.StatusConflict, err.Error(), "NO_VIDEO")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}
