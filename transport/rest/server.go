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
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type sessionService interface {
	CreateSession(ctx context.Context, mode entity.Mode) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error

	SubmitMove(ctx context.Context, id string, position entity.Position) (*entity.Session, entity.MoveResult, error)
	RequestComputerMove(ctx context.Context, id string) (entity.Position, error)
	PlayComputerTurn(ctx context.Context, id string) (*entity.Session, entity.MoveResult, error)

	Reset(ctx context.Context, id string) (*entity.Session, error)
	ResetScore(ctx context.Context, id string) (*entity.Session, error)
	SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error)
}

type Server struct {
	logger   *slog.Logger
	sessions sessionService
	router   chi.Router
}

func New(logger *slog.Logger, sessions sessionService) *Server {
	server := &Server{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)
	router.Post("/sessions", server.createSession)
	router.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", server.getSession)
		r.Delete("/", server.deleteSession)
		r.Post("/moves", server.submitMove)
		r.Get("/computer-move", server.requestComputerMove)
		r.Post("/computer-move", server.playComputerTurn)
		r.Post("/reset", server.reset)
		r.Post("/score/reset", server.resetScore)
		r.Put("/mode", server.setMode)
	})

	server.router = router

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP until ctx is canceled.
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
