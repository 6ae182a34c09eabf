// File: internal/refserver/server.go
package refserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/decision"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 5 * time.Second
)

// Server is a minimal decision service. It always answers with a straight-ahead,
// no-boost action and logs what it was sent.
type Server struct {
	cfg    config.ServerConfig
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router.
func New(cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger.Named("refserver")}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(loggingMiddleware(s.logger))

	router.POST("/ai", s.handleAI)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	s.engine = router
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Frame-Width", "X-Frame-Height"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Decision service listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("decision service stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down decision service: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Decision service stopped")
	return nil
}

// handleAI answers every well-formed request with the same action. Request-level problems
// are reported in-band with status 200.
func (s *Server) handleAI(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	if strings.HasPrefix(c.ContentType(), "application/octet-stream") {
		frame, err := decision.DecodeFrame(c.Request.Header, body)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"error": err.Error()})
			return
		}
		s.logger.Debug("Frame received", zap.Int("width", frame.Width), zap.Int("height", frame.Height))
		respond(c)
		return
	}

	var bundle schemas.SignalBundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	if bundle.Player == nil {
		c.JSON(http.StatusOK, gin.H{"error": "No player"})
		return
	}

	sum := Summarize(RelativeField(bundle))
	s.logger.Debug("Signals received",
		zap.Int("food", len(bundle.Food)),
		zap.Int("prey", len(bundle.Prey)),
		zap.Int("enemies", len(bundle.Enemies)),
		zap.Int("score", bundle.Score),
		zap.Int("field_points", sum.Points),
		zap.Float64("attraction", sum.Attraction),
		zap.Float64("repulsion", sum.Repulsion),
	)
	respond(c)
}

func respond(c *gin.Context) {
	c.JSON(http.StatusOK, schemas.Action{Angle: 0, Boost: false})
}
