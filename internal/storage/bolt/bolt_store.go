package bolt

import (
	"fmt"
	"time"

	"github.com/brk3/habitflow/internal/storage"
	"go.etcd.io/bbolt"
)

const rootBucket = "habitflow"

type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path. It gives up after a
// second if another process holds the file lock.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %s: %w", path, err)
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(rootBucket)).Get([]byte(key))
		if v != nil {
			// bolt values are only valid for the life of the transaction
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *Store) Put(key string, val []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(rootBucket)).Put([]byte(key), val)
	})
}

var _ storage.KV = (*Store)(nil)
