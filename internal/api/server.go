package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"courtscraper/internal/config"
	"courtscraper/internal/domain"
	"courtscraper/internal/storage"
)

// StatsSource supplies the statistics reduced so far in the active run.
type StatsSource interface {
	Snapshot() domain.RunStats
}

// Server exposes run observability over HTTP while a scrape is active:
// Prometheus metrics, store health, and the running statistics.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	stats      StatsSource
	pgStore    *storage.PostgresStore
	redisStore *storage.RedisStore
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, stats StatsSource, ps *storage.PostgresStore, rs *storage.RedisStore, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		stats:      stats,
		pgStore:    ps,
		redisStore: rs,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
