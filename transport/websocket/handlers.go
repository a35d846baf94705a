package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/session"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

const (
	actionConnect    = "connect"
	actionRoomCreate = "room:create"
	actionRoomJoin   = "room:join"
	actionRoomMove   = "room:move"
	actionRoomReset  = "room:reset"
	actionRoomLeave  = "room:leave"
	actionAIMove     = "ai:move"

	actionRoomState            = "room:state"
	actionOpponentDisconnected = "opponent:disconnected"
	actionOpponentReconnected  = "opponent:reconnected"
	actionError                = "error"
)

var (
	errNotConnected = errors.New("player is not connected")
	errBadPayload   = errors.New("bad payload")
)

// handleConnect identifies the player and puts them back into the room they were last in.
func (that *Server) handleConnect(ctx context.Context, conn *connection, payload *Payload) error {
	log := that.logger.With("method", "handleConnect")

	var requestedID string
	if payload.Player != nil {
		requestedID = payload.Player.ID
		conn.name = entity.NormalizeName(payload.Player.Name)
	}

	player, err := that.rooms.GetOrCreatePlayer(ctx, requestedID)
	if err != nil {
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	conn.player = player
	if conn.name == "" {
		conn.name = player.Name
	}

	if err = conn.sendMessage(actionConnect, ResponsePayload{Player: player}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "player_id", player.ID, "room_id", player.RoomID)

	if player.RoomID == "" || conn.session != nil {
		return nil
	}

	return that.rejoin(ctx, conn, player.RoomID)
}

func (that *Server) rejoin(ctx context.Context, conn *connection, roomID string) error {
	log := that.logger.With("method", "rejoin", "player_id", conn.playerID(), "room_id", roomID)

	room, err := that.rooms.JoinRoom(ctx, roomID, conn.player.ID, conn.name)
	if errors.Is(err, apperror.ErrRoomNotFound) || errors.Is(err, apperror.ErrRoomFull) {
		log.Info("remembered room is gone", "reason", err)

		if err = that.rooms.ForgetRoom(ctx, conn.player.ID); err != nil {
			return fmt.Errorf("failed to forget room: %w", err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to rejoin room: %w", err)
	}

	that.metrics.RoomJoins.Inc()

	return that.openSession(ctx, conn, client.ApplyJoined(client.NewState(conn.player.ID, conn.name), room))
}

func (that *Server) handleCreateRoom(ctx context.Context, conn *connection, payload *Payload) error {
	if err := that.identify(conn, payload); err != nil {
		return err
	}

	room, err := that.rooms.CreateRoom(ctx, conn.player.ID, conn.name)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.metrics.RoomsCreated.Inc()

	return that.openSession(ctx, conn, client.ApplyCreated(client.NewState(conn.player.ID, conn.name), room))
}

func (that *Server) handleJoinRoom(ctx context.Context, conn *connection, payload *Payload) error {
	if err := that.identify(conn, payload); err != nil {
		return err
	}

	code := entity.NormalizeCode(payload.RoomCode)
	if !entity.IsValidCode(code) {
		return fmt.Errorf("%w: %q", apperror.ErrRoomNotFound, code)
	}

	room, err := that.rooms.JoinRoom(ctx, code, conn.player.ID, conn.name)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.metrics.RoomJoins.Inc()

	return that.openSession(ctx, conn, client.ApplyJoined(client.NewState(conn.player.ID, conn.name), room))
}

// handleMove writes the proposed board, the resulting room comes back through the session.
func (that *Server) handleMove(ctx context.Context, conn *connection, payload *Payload) error {
	if conn.session == nil {
		return apperror.ErrNoRoom
	}

	if payload.Cell == nil {
		return fmt.Errorf("%w: cell is required", errBadPayload)
	}

	state := conn.session.State()

	board, err := client.ProposeMove(state, *payload.Cell)
	if err != nil {
		return err
	}

	if _, err = that.rooms.MakeMove(ctx, state.RoomID(), board, state.Online.PlayerSymbol); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.metrics.Moves.Inc()

	return nil
}

func (that *Server) handleReset(ctx context.Context, conn *connection, _ *Payload) error {
	if conn.session == nil {
		return apperror.ErrNoRoom
	}

	if _, err := that.rooms.ResetGame(ctx, conn.session.State().RoomID()); err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.metrics.Resets.Inc()

	return nil
}

func (that *Server) handleLeave(ctx context.Context, conn *connection, _ *Payload) error {
	if conn.player == nil {
		return errNotConnected
	}

	that.closeSession(conn)

	if err := that.rooms.ForgetRoom(ctx, conn.player.ID); err != nil {
		return fmt.Errorf("failed to forget room: %w", err)
	}

	return conn.sendState(client.NewState(conn.player.ID, conn.name))
}

// handleAIMove answers the single-player mode, it touches no room.
func (that *Server) handleAIMove(_ context.Context, conn *connection, payload *Payload) error {
	if payload.Board == nil || !payload.Symbol.IsPlayer() {
		return fmt.Errorf("%w: board and symbol are required", errBadPayload)
	}

	cell, err := tictactoe.AIMove(*payload.Board, payload.Symbol, payload.Symbol.Opposite(), conn.rnd)
	if err != nil {
		return fmt.Errorf("failed to pick a move: %w", err)
	}

	return conn.sendMessage(actionAIMove, ResponsePayload{Cell: &cell})
}

// identify requires a connected player with a display name, a name in payload replaces the stored one.
func (that *Server) identify(conn *connection, payload *Payload) error {
	if conn.player == nil {
		return errNotConnected
	}

	if payload.Player != nil {
		if name := entity.NormalizeName(payload.Player.Name); name != "" {
			conn.name = name
		}
	}

	if conn.name == "" {
		return fmt.Errorf("%w: name is required", errBadPayload)
	}

	return nil
}

func (that *Server) openSession(ctx context.Context, conn *connection, initial client.State) error {
	log := that.logger.With("method", "openSession", "player_id", conn.playerID(), "room_id", initial.RoomID())

	that.closeSession(conn)

	if err := conn.sendState(initial); err != nil {
		return fmt.Errorf("failed to send state: %w", err)
	}

	roomSession, err := session.Open(ctx, that.logger, that.broker, initial, that.options, session.Handlers{
		OnState: func(state client.State) {
			if err := conn.sendState(state); err != nil {
				log.Debug("failed to push state", "error", err)
			}
		},
		OnOpponentDisconnect: func() {
			that.metrics.OpponentDisconnects.Inc()
			if err := conn.sendMessage(actionOpponentDisconnected, ResponsePayload{}); err != nil {
				log.Debug("failed to push disconnect", "error", err)
			}
		},
		OnOpponentReconnect: func() {
			that.metrics.OpponentReconnects.Inc()
			if err := conn.sendMessage(actionOpponentReconnected, ResponsePayload{}); err != nil {
				log.Debug("failed to push reconnect", "error", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	conn.session = roomSession
	that.metrics.ActiveSessions.Inc()

	return nil
}

func (that *Server) closeSession(conn *connection) {
	if conn.session == nil {
		return
	}

	if err := conn.session.Close(); err != nil {
		that.logger.Warn("failed to close session", "player_id", conn.playerID(), "error", err)
	}

	conn.session = nil
	that.metrics.ActiveSessions.Dec()
}
