package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/pkg"
)

type SessionService interface {
	CreateSession(ctx context.Context, player *entity.Player, rules entity.Rules) (*entity.Session, error)
	UpdateSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, sessionID string) error

	GetByID(ctx context.Context, id string) (*entity.Session, error)
}

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type sessionService struct {
	sessionRepo sessionRepo
}

func NewSessionService(sessionRepo sessionRepo) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
	}
}

// CreateSession starts a fresh session under a new id and points the player
// at it. The caller persists the player; the session is stored here.
func (that *sessionService) CreateSession(ctx context.Context, player *entity.Player, rules entity.Rules) (*entity.Session, error) {
	session := entity.NewSession(pkg.GenerateSessionID(), rules)

	player.SessionID = session.ID

	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session in storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) UpdateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *sessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
