package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-online/internal/session"
)

type roomUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	ForgetRoom(ctx context.Context, playerID string) error

	CreateRoom(ctx context.Context, playerID, playerName string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomCode, playerID, playerName string) (*entity.Room, error)
	MakeMove(ctx context.Context, roomID string, board entity.Board, mover entity.Mark) (*entity.Room, error)
	ResetGame(ctx context.Context, roomID string) (*entity.Room, error)
}

type handlerFunc func(ctx context.Context, conn *connection, payload *Payload) error

// Server is the browser gateway: it turns player intents into room operations and pushes
// the reconciled room state back.
type Server struct {
	logger   *slog.Logger
	rooms    roomUseCase
	broker   session.Broker
	options  session.Options
	metrics  *metrics.Metrics
	upgrader ws.Upgrader

	handlers map[string]handlerFunc
}

func New(
	logger *slog.Logger,
	rooms roomUseCase,
	broker session.Broker,
	options session.Options,
	metrics *metrics.Metrics,
) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		rooms:   rooms,
		broker:  broker,
		options: options,
		metrics: metrics,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionRoomCreate] = server.handleCreateRoom
	server.handlers[actionRoomJoin] = server.handleJoinRoom
	server.handlers[actionRoomMove] = server.handleMove
	server.handlers[actionRoomReset] = server.handleReset
	server.handlers[actionRoomLeave] = server.handleLeave
	server.handlers[actionAIMove] = server.handleAIMove

	return server
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	that.metrics.ConnectedClients.Inc()
	defer that.metrics.ConnectedClients.Dec()

	log.Info("WebSocket connection established", "remote_addr", req.RemoteAddr)

	that.serve(req.Context(), &connection{
		conn: conn,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	})
}

func (that *Server) serve(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "serve")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		that.closeSession(conn)
		if err := conn.conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	go that.keepAlive(ctx, conn)

	if err := that.handleMessages(ctx, conn); err != nil {
		log.Info("connection closed", "player_id", conn.playerID(), "reason", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.conn.SetReadLimit(maxMessageSize)
	if err := conn.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				return fmt.Errorf("failed to read message: %w", err)
			}
			return nil
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(conn, actionError, fmt.Errorf("%w: %w", errBadPayload, err))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.metrics.MessagesReceived.WithLabelValues("unknown").Inc()
			log.Warn("unknown action", "action", message.Action)
			that.sendError(conn, message.Action, fmt.Errorf("%w: unknown action %q", errBadPayload, message.Action))
			continue
		}

		that.metrics.MessagesReceived.WithLabelValues(message.Action).Inc()

		var payload Payload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				that.sendError(conn, message.Action, fmt.Errorf("%w: %w", errBadPayload, err))
				continue
			}
		}

		if err = handler(ctx, conn, &payload); err != nil {
			log.Warn("error processing message", "action", message.Action, "player_id", conn.playerID(), "error", err)
			that.sendError(conn, message.Action, err)
		}
	}
}

func (that *Server) keepAlive(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.write(ws.PingMessage, nil); err != nil {
				that.logger.Debug("failed to ping", "player_id", conn.playerID(), "error", err)
				return
			}
		}
	}
}

func (that *Server) sendError(conn *connection, action string, err error) {
	payload := ResponsePayload{Action: action, Error: err.Error(), Code: errorCode(err)}

	var storeErr *apperror.StoreError
	if errors.As(err, &storeErr) && payload.Code == codeInternal {
		payload.Error = "storage is unavailable"
	}

	if sendErr := conn.sendMessage(actionError, payload); sendErr != nil {
		that.logger.Debug("failed to send error", "action", action, "error", sendErr)
	}
}
