// Package draftstore persists named in-progress transactions. Drafts are
// stored as the codec's own serialized bytes, so every round trip through a
// store exercises the partially-signed wire format.
package draftstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cashtxorg/libcashtx-go/pst"
)

// Store persists partially signed transactions by name.
type Store interface {
	// Put stores a new draft. Fails with ErrDuplicate if the name is taken.
	Put(name string, tx *pst.Transaction) error

	// Update overwrites an existing draft, typically after more inputs have
	// been signed. Fails with ErrNotFound if the name is unknown.
	Update(name string, tx *pst.Transaction) error

	// Get retrieves a draft by name.
	Get(name string) (*pst.Transaction, error)

	// List returns all draft names in lexical order.
	List() ([]string, error)

	// Delete removes a draft.
	Delete(name string) error
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory draft store.
func NewMemStore() *MemStore {
	return &MemStore{drafts: make(map[string][]byte)}
}

func encodeDraft(name string, tx *pst.Transaction) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	data, err := tx.Bytes()
	if err != nil {
		return nil, fmt.Errorf("draftstore: encode draft: %w", err)
	}
	return data, nil
}

// Put stores a new draft.
func (s *MemStore) Put(name string, tx *pst.Transaction) error {
	data, err := encodeDraft(name, tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drafts[name]; exists {
		return ErrDuplicate
	}
	s.drafts[name] = data
	return nil
}

// Update overwrites an existing draft.
func (s *MemStore) Update(name string, tx *pst.Transaction) error {
	data, err := encodeDraft(name, tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drafts[name]; !exists {
		return ErrNotFound
	}
	s.drafts[name] = data
	return nil
}

// Get retrieves a draft by name.
func (s *MemStore) Get(name string) (*pst.Transaction, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.RLock()
	data, ok := s.drafts[name]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	tx, err := pst.NewTransactionFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("draftstore: decode draft %q: %w", name, err)
	}
	return tx, nil
}

// List returns all draft names in lexical order.
func (s *MemStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.drafts))
	for name := range s.drafts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a draft.
func (s *MemStore) Delete(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[name]; !ok {
		return ErrNotFound
	}
	delete(s.drafts, name)
	return nil
}
