package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/repository"
)

// handleConnect - identifies the player. A payload without an id registers
// a new player; a known id returns the stored one. When the player is bound
// to a session its current state rides along.
func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleConnect")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	var playerID string
	if payload.Player != nil {
		playerID = payload.Player.ID
	}

	player, err := that.players.GetOrCreate(ctx, playerID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	response := &Payload{Player: player}

	if player.SessionID != "" {
		session, stateErr := that.gamePlay.State(ctx, player.ID)
		if stateErr != nil {
			log.Info("bound session is not available", "playerID", player.ID, "error", stateErr)
		} else {
			response = sessionPayload(player, session)
		}
	}

	if err = that.sendMessage(conn, msg.Action, response); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

// handleNewSession - binds the player to a session, creating one with the
// requested rules if none is bound yet.
func (that *Server) handleNewSession(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleNewSession")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	player, err := that.players.GetOrCreate(ctx, payload.Player.ID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	session, err := that.gamePlay.GetOrCreateSession(ctx, player, payload.Rules)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(player, session))
}

func (that *Server) handleState(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleState")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	session, err := that.gamePlay.State(ctx, payload.Player.ID)
	if err != nil {
		return that.respondFailure(conn, msg.Action, nil, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleMove(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMove")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if payload.Cell == nil {
		log.Error("cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	session, err := that.gamePlay.Move(ctx, payload.Player.ID, *payload.Cell)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleJump(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleJump")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if payload.Move == nil {
		log.Error("move is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "move is required")
	}

	session, err := that.gamePlay.Jump(ctx, payload.Player.ID, *payload.Move)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleRestart(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleRestart")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	session, err := that.gamePlay.Restart(ctx, payload.Player.ID)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleResize(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleResize")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if payload.Size == nil {
		log.Error("size is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "size is required")
	}

	session, err := that.gamePlay.Resize(ctx, payload.Player.ID, *payload.Size)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleWinLength(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleWinLength")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if payload.WinLength == nil {
		log.Error("win length is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "win length is required")
	}

	session, err := that.gamePlay.SetWinLength(ctx, payload.Player.ID, *payload.WinLength)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

func (that *Server) handleHighlight(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleHighlight")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if payload.Highlight == nil {
		log.Error("highlight is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "highlight is required")
	}

	session, err := that.gamePlay.SetHighlight(ctx, payload.Player.ID, *payload.Highlight)
	if err != nil {
		return that.respondFailure(conn, msg.Action, session, err)
	}

	return that.sendMessage(conn, msg.Action, sessionPayload(nil, session))
}

// handleClose - drops the player's session and unbinds them. Closing when
// nothing is bound succeeds quietly.
func (that *Server) handleClose(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleClose")

	payload, err := decodePayload(msg)
	if err != nil {
		log.Error("failed to decode payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payload.Player == nil || payload.Player.ID == "" {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "player is required")
	}

	if err = that.gamePlay.CloseSession(ctx, payload.Player.ID); err != nil {
		return that.respondFailure(conn, msg.Action, nil, err)
	}

	log.Info("session closed", "playerID", payload.Player.ID)

	return that.sendMessage(conn, msg.Action, &Payload{Player: &entity.Player{ID: payload.Player.ID}})
}

// respondFailure - maps a session operation error onto the wire. Rule
// rejections carry the untouched session so the client keeps an
// authoritative copy, lookup failures become a bare error, anything else
// bubbles up to the message loop.
func (that *Server) respondFailure(conn *websocket.Conn, action string, session *entity.Session, err error) error {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameDecided),
		errors.Is(err, apperror.ErrOutOfRange):
		return that.sendRejected(conn, action, session, err)
	case errors.Is(err, apperror.ErrNoActiveSession):
		return that.sendErrorResponse(conn, action, apperror.ErrNoActiveSession.Error())
	case errors.Is(err, repository.ErrSessionNotFound):
		return that.sendErrorResponse(conn, action, "session not found")
	case errors.Is(err, repository.ErrPlayerNotFound):
		return that.sendErrorResponse(conn, action, "player not found")
	default:
		return fmt.Errorf("failed to handle %s: %w", action, err)
	}
}
