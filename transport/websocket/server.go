package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type sessionService interface {
	CreateSession(ctx context.Context, mode entity.Mode) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)

	SubmitMove(ctx context.Context, id string, position entity.Position) (*entity.Session, entity.MoveResult, error)
	RequestComputerMove(ctx context.Context, id string) (entity.Position, error)
	PlayScheduledComputerTurn(ctx context.Context, id string, ticket entity.TurnTicket) (*entity.Session, entity.MoveResult, error)

	Reset(ctx context.Context, id string) (*entity.Session, error)
	ResetScore(ctx context.Context, id string) (*entity.Session, error)
	SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error)
}

// DelayFunc - how long the computer "thinks" before its move is played.
type DelayFunc func() time.Duration

// RandomDelay - uniform delay in [low, high].
func RandomDelay(rng *rand.Rand, low, high time.Duration) DelayFunc {
	var mu sync.Mutex

	return func() time.Duration {
		if high <= low {
			return low
		}

		mu.Lock()
		defer mu.Unlock()

		return low + time.Duration(rng.Int63n(int64(high-low)+1))
	}
}

type handlerFunc func(ctx context.Context, conn *connection, action string, payload requestPayload) error

type Server struct {
	logger   *slog.Logger
	sessions sessionService
	delay    DelayFunc
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	// computer turns scheduled but not yet played
	pending sync.WaitGroup
}

func New(logger *slog.Logger, sessions sessionService, delay DelayFunc) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		delay:    delay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		actionNew:          server.handleNewSession,
		actionGet:          server.handleGetSession,
		actionTurn:         server.handleTurn,
		actionComputerMove: server.handleComputerMove,
		actionReset:        server.handleReset,
		actionScoreReset:   server.handleScoreReset,
		actionMode:         server.handleMode,
		actionKey:          server.handleKey,
	}

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - serves websocket connections until ctx is canceled, then lets pending computer turns finish.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

	that.pending.Wait()

	return nil
}

// connection - gorilla allows a single concurrent writer.
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (that *connection) send(action string, payload responsePayload) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.WriteJSON(response{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer ws.Close()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	that.handleMessages(r.Context(), &connection{ws: ws})
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ws.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(conn, actionError, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		payload, err := decodePayload(message.Payload)
		if err != nil {
			that.sendError(conn, message.Action, err)
			continue
		}

		if err = handler(ctx, conn, message.Action, payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) sendError(conn *connection, action string, err error) {
	if sendErr := conn.send(action, responsePayload{Error: err.Error()}); sendErr != nil {
		that.logger.Error("failed to send error response", "error", sendErr)
	}
}
