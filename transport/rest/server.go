package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
)

type sessions interface {
	GetByID(ctx context.Context, id string) (*entity.Session, error)
}

// Server exposes the read side over HTTP. Session mutations go through the
// websocket protocol only.
type Server struct {
	logger   *slog.Logger
	sessions sessions
	router   chi.Router
}

func New(logger *slog.Logger, sessions sessions) *Server {
	server := &Server{
		logger:   logger,
		sessions: sessions,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", server.handlePing)
	router.Get("/sessions/{id}", server.handleGetSession)

	server.router = router

	return server
}

// Start - starts the http server and blocks until it fails or the context
// is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
