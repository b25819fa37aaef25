package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moonshot/internal/config"
	"moonshot/internal/ledger"
	"moonshot/internal/logger"
)

// Server exposes a read-only JSON view of the paper portfolio.
type Server struct {
	httpServer *http.Server
	store      *ledger.Store
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(store *ledger.Store, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		store:  store,
		config: cfg,
		logger: log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/orders", s.handleOrders)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
