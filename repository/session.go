package repository

import (
	"context"

	"github.com/fastygo/academy/domain"
)

// SessionRepository persists the single current session under a fixed key.
// Get returns domain.ErrSessionNotFound when nothing is stored and a
// CORRUPT domain error when the record cannot be decoded.
type SessionRepository interface {
	Get(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context) error
}
