// Package api exposes wall analysis over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/session"
)

// WallSetStore persists analysed wall sets.
type WallSetStore interface {
	SaveWallSet(ctx context.Context, doc model.ExportDocument, provider, source string) (string, error)
	GetWallSet(ctx context.Context, id string) (model.WallSet, model.ExportDocument, error)
	ListWallSets(ctx context.Context, limit int) ([]model.WallSet, error)
	DeleteWallSet(ctx context.Context, id string) error
}

// Config wires the router's dependencies.
type Config struct {
	Analyzer       session.Analyzer
	Store          WallSetStore
	AllowedOrigins []string
	Timeout        time.Duration
	Remote         bool
}

// Router serves the climbr HTTP API.
type Router struct {
	analyzer session.Analyzer
	store    WallSetStore
	timeout  time.Duration
	remote   bool
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) http.Handler {
	r := &Router{
		analyzer: cfg.Analyzer,
		store:    cfg.Store,
		timeout:  cfg.Timeout,
		remote:   cfg.Remote,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", r.wrap(r.handleHealth))

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/grades", r.wrap(r.handleGrades))
		rt.Get("/grades/convert", r.wrap(r.handleConvert))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/sets", r.wrap(r.handleListSets))
		rt.Get("/sets/{id}", r.wrap(r.handleGetSet))
		rt.Delete("/sets/{id}", r.wrap(r.handleDeleteSet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, body := errorResponse(err)
			if status >= http.StatusInternalServerError {
				common.LogError(err, "Request failed", common.Fields{
					"path":       req.URL.Path,
					"request_id": middleware.GetReqID(req.Context()),
				})
			}
			writeJSON(w, status, body)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		slog.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(req.Context()))
	})
}
