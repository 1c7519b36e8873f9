package boltdb

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Open creates the parent directory, opens the Bolt file and ensures the
// provided buckets exist. A single *bolt.DB is shared by every bucket user
// because Bolt holds an exclusive file lock.
func Open(path string, buckets ...string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := EnsureBuckets(db, buckets...); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureBuckets creates any missing bucket.
func EnsureBuckets(db *bolt.DB, buckets ...string) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if name == "" {
				continue
			}
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
