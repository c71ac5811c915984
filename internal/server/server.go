// Package server wires the HTTP surface: the soils AOI endpoint, the
// flood point lookup, and the liveness probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kmurflow98/landsage-app/internal/config"
	"github.com/kmurflow98/landsage-app/internal/flood"
	"github.com/kmurflow98/landsage-app/internal/health"
	imw "github.com/kmurflow98/landsage-app/internal/middleware"
	"github.com/kmurflow98/landsage-app/internal/soil"
)

// SoilQuerier runs the AOI pipeline and returns the serialized response.
// URL reports the resolved upstream endpoint for the capability response.
type SoilQuerier interface {
	Query(ctx context.Context, rawGeom json.RawMessage) ([]byte, error)
	URL() string
}

// FloodLookup resolves the flood zone for a point.
type FloodLookup interface {
	Lookup(ctx context.Context, lon, lat float64) (flood.Result, error)
}

type Deps struct {
	Soil  SoilQuerier
	Flood FloodLookup
}

type soilsRequest struct {
	Geometry json.RawMessage `json:"geometry"`
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(logger *slog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(imw.Recover())
	r.Use(imw.Logging(logger))
	r.Use(imw.CORS())

	r.Get("/healthz", health.Liveness())

	r.Get("/api/soils", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"layer":   soil.Layer,
			"source":  deps.Soil.URL(),
			"status":  "ready",
			"methods": []string{"POST"},
		})
	})

	r.Post("/api/soils", func(w http.ResponseWriter, req *http.Request) {
		var body soilsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			serverError(w, errors.New("request body must be JSON with a geometry member"))
			return
		}

		resp, err := deps.Soil.Query(req.Context(), body.Geometry)
		if err != nil {
			logger.Error("soils query failed", "err", err)
			serverError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(resp)
	})

	r.Get("/api/flood", func(w http.ResponseWriter, req *http.Request) {
		lon, errLon := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
		lat, errLat := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
		if errLon != nil || errLat != nil {
			http.Error(w, "lon and lat query parameters are required", http.StatusBadRequest)
			return
		}

		res, err := deps.Flood.Lookup(req.Context(), lon, lat)
		if err != nil {
			if errors.Is(err, flood.ErrInvalidPoint) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error("flood lookup failed", "err", err)
			serverError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	})

	return r
}

// serverError is the single error surface for the query pipeline: every
// failure class comes back as 500 with a plain-text message.
func serverError(w http.ResponseWriter, err error) {
	http.Error(w, "Server error: "+err.Error(), http.StatusInternalServerError)
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(logger, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
