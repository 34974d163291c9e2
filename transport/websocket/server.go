package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
)

type players interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Player, error)
}

type gamePlay interface {
	GetOrCreateSession(ctx context.Context, player *entity.Player, rules *entity.Rules) (*entity.Session, error)
	State(ctx context.Context, playerID string) (*entity.Session, error)

	Move(ctx context.Context, playerID string, cell int) (*entity.Session, error)
	Jump(ctx context.Context, playerID string, move int) (*entity.Session, error)
	Restart(ctx context.Context, playerID string) (*entity.Session, error)
	Resize(ctx context.Context, playerID string, size int) (*entity.Session, error)
	SetWinLength(ctx context.Context, playerID string, length int) (*entity.Session, error)
	SetHighlight(ctx context.Context, playerID string, on bool) (*entity.Session, error)

	CloseSession(ctx context.Context, playerID string) error
}

type handlerFunc func(ctx context.Context, msg *Message, conn *websocket.Conn) error

// Server speaks the action protocol over websocket: every client message is
// {action, payload}, every reply echoes the action it answers. One
// connection drives one player, so the read loop serializes that player's
// session operations by construction.
type Server struct {
	logger   *slog.Logger
	players  players
	gamePlay gamePlay

	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, players players, gamePlay gamePlay) *Server {
	server := &Server{
		logger:   logger,
		players:  players,
		gamePlay: gamePlay,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["session:new"] = server.handleNewSession
	server.handlers["session:state"] = server.handleState
	server.handlers["session:move"] = server.handleMove
	server.handlers["session:jump"] = server.handleJump
	server.handlers["session:restart"] = server.handleRestart
	server.handlers["session:resize"] = server.handleResize
	server.handlers["session:win-length"] = server.handleWinLength
	server.handlers["session:highlight"] = server.handleHighlight
	server.handlers["session:close"] = server.handleClose

	return server
}

// Start - starts the websocket server and blocks until it fails or the
// context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(writer http.ResponseWriter, req *http.Request) {
		that.serveConnection(ctx, writer, req)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

// serveConnection - upgrades the connection and runs its message loop.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("websocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		message, err := decodeMessage(raw)
		if err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				log.Error("failed to send error response", "error", err)
			}

			continue
		}

		if err = handler(ctx, message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
