// Package server exposes the matching pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/sink"
)

const requestIDHeader = "X-Request-Id"

type Server struct {
	pipeline Runner
	sink     *sink.Sink
	logger   *zap.Logger
}

func New(pipeline Runner, snk *sink.Sink, logger *zap.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		sink:     snk,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.requestLog())

	router.GET("/healthz", s.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/search", s.Search)
		v1.POST("/export/csv", s.ExportCSV)
	}

	return router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

// Health reports liveness and whether the result sink is connected.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"sink":   s.sink.Enabled(),
	})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
