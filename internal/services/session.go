package services

import (
	"context"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/models"
)

type ServiceSession struct {
	container *do.Injector
	db        *database.Adapter
	ttl       time.Duration
}

func NewServiceSession(container *do.Injector) (*ServiceSession, error) {
	db, err := do.Invoke[*database.Adapter](container)
	if err != nil {
		return nil, err
	}

	ttl, err := do.InvokeNamed[time.Duration](container, NAME_SESSION_TTL)
	if err != nil || ttl <= 0 {
		ttl = datastore.DEFAULT_SESSION_TTL
	}

	return &ServiceSession{container, db, ttl}, nil
}

func (service *ServiceSession) TTL() time.Duration {
	return service.ttl
}

// Resume returns the user's live session on platform, opening a new one when
// there is none.
func (service *ServiceSession) Resume(ctx context.Context, userPlatformID, platform string) (*models.UserSession, error) {
	session, err := datastore.GetActiveSession(ctx, service.db, userPlatformID, platform)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	return datastore.CreateSession(ctx, service.db, userPlatformID, platform, service.ttl)
}

// Touch stores the conversation state and extends the session by the TTL.
func (service *ServiceSession) Touch(ctx context.Context, sessionID string, sessionContext map[string]any, lastIntent string) error {
	return datastore.TouchSession(ctx, service.db, sessionID, sessionContext, lastIntent, service.ttl)
}

func (service *ServiceSession) End(ctx context.Context, sessionID string) error {
	ended, err := datastore.EndSession(ctx, service.db, sessionID)
	if err != nil {
		return err
	}
	if !ended {
		return errorx.Wrap(ErrSessionNotFound, errorx.NotExist)
	}
	return nil
}
