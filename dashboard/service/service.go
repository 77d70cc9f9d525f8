/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package service assembles the litviz dashboard's HTTP service.
package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ilhamster/litviz/dashboard/config"
	datasource "github.com/ilhamster/litviz/dashboard/data_source"
	"github.com/ilhamster/litviz/dashboard/metrics"
	"github.com/ilhamster/litviz/handlers"
	querydispatcher "github.com/ilhamster/litviz/query_dispatcher"
)

const requestTimeout = 60 * time.Second

// NewFetcher returns the dataset fetcher the provided configuration selects:
// an HTTP fetcher if a base URL is set, and otherwise a file fetcher.
func NewFetcher(cfg *config.Config) (datasource.Fetcher, error) {
	if cfg.BaseURL != "" {
		return datasource.NewHTTPFetcher(cfg.BaseURL, requestTimeout)
	}
	return datasource.NewFileFetcher(cfg.DataRoot), nil
}

// Service serves dashboard data queries, chart renderings and ranking
// playback streams.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
	ds     *datasource.DataSource

	queryHandler    handlers.QueryHandler
	chartHandler    handlers.Handler
	playbackHandler handlers.Handler
}

// New returns a new Service configured by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithFetcher(cfg, fetcher, logger)
}

// NewWithFetcher returns a new Service configured by cfg, fetching datasets
// with the provided fetcher.
func NewWithFetcher(cfg *config.Config, fetcher datasource.Fetcher, logger *slog.Logger) (*Service, error) {
	ds, err := datasource.New(cfg.CacheSize, fetcher,
		datasource.WithLogger(logger),
		datasource.WithRegions(cfg.TopologyObject, cfg.ExcludedRegions),
	)
	if err != nil {
		return nil, err
	}
	qd, err := querydispatcher.New(ds)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:             cfg,
		logger:          logger,
		ds:              ds,
		queryHandler:    handlers.NewQueryHandler(qd, logger),
		chartHandler:    handlers.NewChartHandler(ds, logger),
		playbackHandler: handlers.NewPlaybackHandler(ds, nil, cfg.AllowedOrigins, logger),
	}, nil
}

// DataSource returns the receiver's data source.
func (s *Service) DataSource() *datasource.DataSource {
	return s.ds
}

// requestLogger logs each request's method, path, status and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("handled request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func register(r chi.Router, h handlers.Handler) {
	for path, handler := range h.HandlersByPath() {
		r.HandleFunc(path, handler)
	}
}

// Router returns a router serving all of the receiver's endpoints.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Playback streams outlive the request timeout.
	register(r, s.playbackHandler)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		register(r, s.queryHandler)
		register(r, s.chartHandler)
	})
	return r
}
