package redis

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

type sessionRepository struct {
	client *redislib.Client
	key    string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. The record
// lives under "session:<key>"; a zero ttl keeps it until logout.
func NewSessionRepository(client *redislib.Client, key string, ttl time.Duration) repository.SessionRepository {
	if key == "" {
		key = "user"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &sessionRepository{
		client: client,
		key:    "session:" + key,
		ttl:    ttl,
	}
}

func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return domain.DecodeSession(result)
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	payload, err := domain.EncodeSession(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, r.ttl).Err()
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
