// Package api exposes distance and nearest-clinic queries over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/geo"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/UnknownOlympus/asclepius/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log     *slog.Logger
	locator *service.Locator
	metrics *metrics.Metrics
	db      Pinger // optional
}

// NewServer creates a Server. db may be nil when no database is configured.
func NewServer(log *slog.Logger, locator *service.Locator, metrics *metrics.Metrics, db Pinger) *Server {
	return &Server{log: log, locator: locator, metrics: metrics, db: db}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(gatherer prometheus.Gatherer) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.GET("/distance", s.distance)
	v1.GET("/clinics/nearest", s.nearest)

	return engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.log.ErrorContext(c.Request.Context(), "Health check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "DB ping failed")
			return
		}
	}

	c.String(http.StatusOK, "OK")
}

type distanceResponse struct {
	From       models.GeoPoint `json:"from"`
	To         models.GeoPoint `json:"to"`
	DistanceKm float64         `json:"distance_km"`
}

func (s *Server) distance(c *gin.Context) {
	s.metrics.DistanceRequests.WithLabelValues("distance").Inc()

	from, err := models.ParseGeoPoint(c.Query("from"))
	if err != nil {
		badRequest(c, "from: "+err.Error())
		return
	}
	to, err := models.ParseGeoPoint(c.Query("to"))
	if err != nil {
		badRequest(c, "to: "+err.Error())
		return
	}

	validate, err := strconv.ParseBool(c.DefaultQuery("validate", "true"))
	if err != nil {
		badRequest(c, "validate must be a boolean")
		return
	}

	var km float64
	if validate {
		if km, err = geo.ValidatedDistance(from, to); err != nil {
			badRequest(c, err.Error())
			return
		}
	} else {
		km = geo.Distance(from, to)
	}

	c.JSON(http.StatusOK, distanceResponse{From: from, To: to, DistanceKm: km})
}

type nearestResponse struct {
	At      models.GeoPoint        `json:"at"`
	Clinics []service.RankedClinic `json:"clinics"`
}

func (s *Server) nearest(c *gin.Context) {
	const defaultLimit = 5

	s.metrics.DistanceRequests.WithLabelValues("nearest").Inc()

	at, err := models.ParseGeoPoint(c.Query("at"))
	if err != nil {
		badRequest(c, "at: "+err.Error())
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "0"), 64)
	if err != nil || radius < 0 {
		badRequest(c, "radius_km must be a non-negative number")
		return
	}

	ranked, err := s.locator.Nearest(at, limit, radius)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, nearestResponse{At: at, Clinics: ranked})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
