// Package session persists the terminal's backend credential between
// restarts. It is the single owner of the stored token: written on login,
// read by every outbound request, cleared on logout or an authorization
// failure.
package session

import (
	"errors"
	"sync"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "session"

var (
	tokenKey = []byte("token")
	userKey  = []byte("user")
)

// ErrNoSession is returned when no credential is stored.
var ErrNoSession = errors.New("no active session")

// Store wraps a BoltDB file holding the current session. Reads are served
// from memory; the file only keeps the session across restarts.
type Store struct {
	db *bolt.DB

	mu    sync.RWMutex
	token string
	user  []byte
}

// Open opens (or creates) the session database at path and loads any
// previously stored credential.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		if v := b.Get(tokenKey); v != nil {
			s.token = string(v)
		}
		if v := b.Get(userKey); v != nil {
			s.user = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the stored credential, or ErrNoSession.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoSession
	}
	return s.token, nil
}

// SetToken stores a new credential and the raw user payload returned by the
// login endpoint.
func (s *Store) SetToken(token string, user []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}
		return b.Put(userKey, user)
	})
	if err != nil {
		return err
	}
	s.token = token
	s.user = append([]byte(nil), user...)
	return nil
}

// User returns the raw user payload stored at login, or nil.
func (s *Store) User() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Clear wipes the session. Called on logout and on a 401 from the backend.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(userKey)
	})
	if err != nil {
		return err
	}
	s.token = ""
	s.user = nil
	return nil
}
