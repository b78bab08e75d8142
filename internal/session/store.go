package session

import (
	"context"
	"time"
)

const (
	recordPrefix = "session:"
	indexPrefix  = "user_sessions:"
)

// RecordKey builds the store key holding one session record.
func RecordKey(phantomToken string) string {
	return recordPrefix + phantomToken
}

// IndexKey builds the store key holding a user's set of phantom tokens.
func IndexKey(userID string) string {
	return indexPrefix + userID
}

// Store defines the key-value operations sessions need. Implementations
// (e.g., Redis) provide each operation atomically; callers must not
// assume atomicity across operations.
type Store interface {
	// Get returns the value at key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	AddToSet(ctx context.Context, key, member string) error
	Members(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
