package bolt

import (
	"context"

	boltlib "go.etcd.io/bbolt"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/internal/infrastructure/boltdb"
	"github.com/fastygo/academy/repository"
)

const (
	SessionBucket = "session"
	// SessionKey is the well-known key of the current session record.
	SessionKey = "user"
)

type sessionRepository struct {
	db     *boltlib.DB
	bucket []byte
	key    []byte
}

// NewSessionRepository creates a Bolt-backed session repository.
func NewSessionRepository(db *boltlib.DB, key string) (repository.SessionRepository, error) {
	if key == "" {
		key = SessionKey
	}
	if err := boltdb.EnsureBuckets(db, SessionBucket); err != nil {
		return nil, err
	}
	return &sessionRepository{
		db:     db,
		bucket: []byte(SessionBucket),
		key:    []byte(key),
	}, nil
}

func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw []byte
	err := r.db.View(func(tx *boltlib.Tx) error {
		if v := tx.Bucket(r.bucket).Get(r.key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrSessionNotFound
	}
	return domain.DecodeSession(raw)
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := domain.EncodeSession(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *boltlib.Tx) error {
		return tx.Bucket(r.bucket).Put(r.key, payload)
	})
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *boltlib.Tx) error {
		return tx.Bucket(r.bucket).Delete(r.key)
	})
}
