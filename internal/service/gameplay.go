package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/repository"
)

// GamePlayService is the choreography behind every client action: load the
// player's session, call one session operation, persist the result. Failed
// operations still return the loaded session so transports can report the
// error next to the unchanged state.
type GamePlayService interface {
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

type gamePlayService struct {
	logger *slog.Logger

	playerService  PlayerService
	sessionService SessionService

	defaultRules entity.Rules
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, sessionService SessionService, defaultRules entity.Rules) GamePlayService {
	return &gamePlayService{
		logger:         logger,
		playerService:  playerService,
		sessionService: sessionService,
		defaultRules:   defaultRules.Normalized(),
	}
}

// GetOrCreateSession returns the player's live session, starting one when
// the player has none or the stored one expired. nil rules means the
// configured defaults.
func (that *gamePlayService) GetOrCreateSession(ctx context.Context, player *entity.Player, rules *entity.Rules) (*entity.Session, error) {
	if player.SessionID != "" {
		session, err := that.sessionService.GetByID(ctx, player.SessionID)
		if err == nil {
			return session, nil
		}

		if !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		// the stored session expired, start a new one
	}

	newRules := that.defaultRules
	if rules != nil {
		newRules = *rules
	}

	session, err := that.sessionService.CreateSession(ctx, player, newRules)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err = that.playerService.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) State(ctx context.Context, playerID string) (*entity.Session, error) {
	return that.sessionOf(ctx, playerID)
}

func (that *gamePlayService) Move(ctx context.Context, playerID string, cell int) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = session.ApplyMove(cell); err != nil {
		return session, fmt.Errorf("failed to apply move: %w", err)
	}

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) Jump(ctx context.Context, playerID string, move int) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = session.JumpTo(move); err != nil {
		return session, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) Restart(ctx context.Context, playerID string) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session.Reset()

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) Resize(ctx context.Context, playerID string, size int) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session.Resize(size)

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) SetWinLength(ctx context.Context, playerID string, length int) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session.SetWinLength(length)

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (that *gamePlayService) SetHighlight(ctx context.Context, playerID string, on bool) (*entity.Session, error) {
	session, err := that.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session.SetHighlightWins(on)

	if err = that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// CloseSession deletes the player's session and unbinds the player. A
// decided game is deliberately kept alive until this call or the storage
// TTL, so clients can keep time-traveling after the result is known.
func (that *gamePlayService) CloseSession(ctx context.Context, playerID string) error {
	log := that.logger.With("method", "CloseSession", "playerID", playerID)

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.SessionID == "" {
		return nil
	}

	if err = that.sessionService.DeleteSession(ctx, player.SessionID); err != nil {
		log.Error("failed to delete session", "error", err)
	}

	player.SessionID = ""
	if err = that.playerService.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func (that *gamePlayService) sessionOf(ctx context.Context, playerID string) (*entity.Session, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.SessionID == "" {
		return nil, apperror.ErrNoActiveSession
	}

	session, err := that.sessionService.GetByID(ctx, player.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}
