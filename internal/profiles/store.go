// Package profiles stores one profile document per identity uid in the
// document store. Documents are loosely structured; beyond key presence no
// per-field rules are enforced.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no document exists for the uid.
var ErrNotFound = errors.New("profile not found")

// Document is the per-user profile record. Fields other than UID start
// empty at signup and are filled in later by the profile-editing surface.
type Document struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	YearOfStudy string `json:"year_of_study"`
	Department  string `json:"department"`
	Branch      string `json:"branch"`
	Section     string `json:"section"`
}

// NewDocument seeds a document for a freshly created identity.
func NewDocument(uid, username string) Document {
	return Document{
		UID:      uid,
		Username: username,
	}
}

// Store persists profile documents, keyed by identity uid.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore connects to the document store and verifies the connection.
func NewStore(addr, password, prefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to profile store: %w", err)
	}

	return &Store{rdb: rdb, prefix: prefix}, nil
}

// Put writes a document, replacing any existing one for the same uid.
func (s *Store) Put(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(doc.UID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Get reads the document for a uid.
func (s *Store) Get(ctx context.Context, uid string) (*Document, error) {
	data, err := s.rdb.Get(ctx, s.key(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &doc, nil
}

// Delete removes the document for a uid. Deleting an absent document is
// not an error.
func (s *Store) Delete(ctx context.Context, uid string) error {
	return s.rdb.Del(ctx, s.key(uid)).Err()
}

// Ping checks connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) key(uid string) string {
	return s.prefix + ":" + uid
}
