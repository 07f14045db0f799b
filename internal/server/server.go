package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wonders/internal/engine"
	"wonders/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Config holds the listener settings.
type Config struct {
	Port        int
	PublicURL   string        // base of join links; derived from the request host when empty
	IdleTimeout time.Duration // drop tables with no connection for this long
}

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	cfg      Config
	handlers *Handlers
	log      *zap.Logger
}

func New(cfg Config, provider store.Provider, eval *engine.Evaluator, log *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		handlers: NewHandlers(provider, eval, cfg, log),
		log:      log,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/tables", s.handlers.CreateTable)
		api.GET("/tables/:id/qr", s.handlers.TableQR)
		api.GET("/tables/:id/snapshot", s.handlers.TableSnapshot)
		api.GET("/cards", s.handlers.ListCards)
		api.GET("/cards/:name", s.handlers.GetCard)
		api.POST("/evaluate", s.handlers.Evaluate)
		api.GET("/player-id", s.handlers.PlayerID)
	}
	r.GET("/ws", s.handlers.HandleWS)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.handlers.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.handlers.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
