package draftstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/cashtxorg/libcashtx-go/pst"
)

var bucketDrafts = []byte("drafts")

// BoltStore persists drafts in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("draftstore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("draftstore: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDrafts)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("draftstore: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put stores a new draft.
func (s *BoltStore) Put(name string, tx *pst.Transaction) error {
	data, err := encodeDraft(name, tx)
	if err != nil {
		return err
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketDrafts)
		if b.Get([]byte(name)) != nil {
			return ErrDuplicate
		}
		if err := b.Put([]byte(name), data); err != nil {
			return fmt.Errorf("draftstore: put draft: %w", err)
		}
		return nil
	})
}

// Update overwrites an existing draft.
func (s *BoltStore) Update(name string, tx *pst.Transaction) error {
	data, err := encodeDraft(name, tx)
	if err != nil {
		return err
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketDrafts)
		if b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		if err := b.Put([]byte(name), data); err != nil {
			return fmt.Errorf("draftstore: update draft: %w", err)
		}
		return nil
	})
}

// Get retrieves a draft by name.
func (s *BoltStore) Get(name string) (*pst.Transaction, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var data []byte
	err := s.db.View(func(btx *bbolt.Tx) error {
		v := btx.Bucket(bucketDrafts).Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tx, err := pst.NewTransactionFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("draftstore: decode draft %q: %w", name, err)
	}
	return tx, nil
}

// List returns all draft names in lexical order. Bolt keys iterate sorted
// already.
func (s *BoltStore) List() ([]string, error) {
	var names []string
	err := s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketDrafts).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("draftstore: list drafts: %w", err)
	}
	return names, nil
}

// Delete removes a draft.
func (s *BoltStore) Delete(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketDrafts)
		if b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		if err := b.Delete([]byte(name)); err != nil {
			return fmt.Errorf("draftstore: delete draft: %w", err)
		}
		return nil
	})
}
