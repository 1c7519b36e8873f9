package bolt

import (
	"context"
	"strings"

	boltlib "go.etcd.io/bbolt"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/internal/infrastructure/boltdb"
	"github.com/fastygo/academy/repository"
)

const PushTokenBucket = "push_tokens"

type pushTokenRepository struct {
	db     *boltlib.DB
	bucket []byte
}

// NewPushTokenRepository stores tokens as "<account>/<token>" keys so a
// prefix scan lists one account's devices.
func NewPushTokenRepository(db *boltlib.DB) (repository.PushTokenRepository, error) {
	if err := boltdb.EnsureBuckets(db, PushTokenBucket); err != nil {
		return nil, err
	}
	return &pushTokenRepository{db: db, bucket: []byte(PushTokenBucket)}, nil
}

func (r *pushTokenRepository) Add(ctx context.Context, accountID, token string) error {
	if accountID == "" || strings.TrimSpace(token) == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *boltlib.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(accountID+"/"+token), []byte{1})
	})
}

func (r *pushTokenRepository) List(ctx context.Context, accountID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(accountID + "/")
	var tokens []string
	err := r.db.View(func(tx *boltlib.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			tokens = append(tokens, string(k[len(prefix):]))
		}
		return nil
	})
	return tokens, err
}
