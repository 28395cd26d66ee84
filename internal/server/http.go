package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/version"
)

// Route paths
const (
	PathWebSocket = "/ws"
	PathHealth    = "/health"
)

// ConfigureGinMode puts gin in release mode, which silences its banner and
// route dump, unless logLevel is "debug". It returns the mode set.
func ConfigureGinMode(logLevel string) string {
	mode := gin.ReleaseMode
	if logLevel == "debug" {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	return mode
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET(PathHealth, s.handleHealth)
	router.GET(PathWebSocket, s.handleWebSocket)

	return router
}

// requestLogger logs each HTTP request through the logging package
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logging.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("remote_addr", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// handleHealth reports liveness and basic server facts
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"version":     version.Version,
		"engine":      s.config.Engine,
		"connections": s.GetActiveConnections(),
		"tls":         s.tlsConfig != nil,
	})
}
