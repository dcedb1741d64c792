// Package session persists the last-viewed state of the library UI, pure
// convenience state restored on the next load.
package session

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

const stateKey = "session:view-state"

// State is the restorable view state. Zero value means nothing was
// selected previously.
type State struct {
	LastVideoID  string `json:"lastVideoId,omitempty"`
	LastCategory string `json:"lastCategory,omitempty"`
	View         string `json:"view,omitempty"`
}

type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(state State) error {
	buf, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(stateKey), buf)
	})
}

// Load returns the saved state, or the zero state when none was saved.
func (s *Store) Load() (State, error) {
	var out State
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(stateKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	return out, nil
}

func (s *Store) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(stateKey))
	})
}
