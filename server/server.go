// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the query engine and the profile store over HTTP.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/alumap/alumni"
	"github.com/jcodagnone/alumap/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProfileStore is the part of the profile repository the API writes through.
type ProfileStore interface {
	query.Source
	UpdatePrivacy(id int64, tier alumni.PrivacyTier) error
	Update(id int64, u *alumni.ProfileUpdate) (*alumni.Record, error)
}

type Server struct {
	engine   *query.Engine
	store    ProfileStore
	gatherer prometheus.Gatherer
	cfg      Config
}

// NewServer creates the API server. gatherer backs /metrics and may be nil
// to expose the default registry.
func NewServer(engine *query.Engine, store ProfileStore, gatherer prometheus.Gatherer, cfg Config) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		engine:   engine,
		store:    store,
		gatherer: gatherer,
		cfg:      cfg.withDefaults(),
	}
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.CORSOrigins
		cfg.AllowCredentials = true
	}

	return cfg
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID(), cors.New(s.corsConfig()))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/alumni", requireAuth(s.cfg.JWTSecret))
	api.GET("", s.listAlumni)
	api.GET("/nearby", s.nearbyAlumni)
	api.GET("/grouped", s.groupedAlumni)
	api.GET("/startups", s.listStartups)
	api.GET("/overseas", s.overseasAlumni)
	api.GET("/search/location", s.searchByLocation)
	api.GET("/me", s.getMe)
	api.PUT("/me", s.updateMe)
	api.GET("/:id", s.getDetail)
	api.PUT("/:id/privacy", s.updatePrivacy)

	return r
}

func (s *Server) Run() error {
	log.Printf("🌐 Listening on http://%s", s.cfg.Addr)

	return s.Router().Run(s.cfg.Addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondError maps store and engine errors to HTTP responses.
func respondError(ctx *gin.Context, err error) {
	switch {
	case alumni.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case alumni.IsValidationError(err):
		vErr := alumni.AsValidationError(err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "field": vErr.Field, "message": vErr.Message})
	default:
		log.Printf("Error handling %s %s [%s]: %v", ctx.Request.Method, ctx.Request.URL.Path, requestIDFrom(ctx), err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
