package session

import (
	"context"
	"fmt"
	"time"
)

// Manager owns the lifecycle of phantom-token sessions: creation on
// login, targeted deletion on logout, and bulk deletion across a user's
// session index.
type Manager struct {
	store        Store
	userIndexTTL time.Duration
}

func NewManager(store Store, userIndexTTL time.Duration) *Manager {
	return &Manager{
		store:        store,
		userIndexTTL: userIndexTTL,
	}
}

// Create writes a new session record under a freshly generated phantom
// token and registers the token in the user's session index. The record
// TTL tracks the refresh token's remaining lifetime.
func (m *Manager) Create(ctx context.Context, userID string, rec Record, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("session: missing user_id")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("session: ttl must be positive")
	}

	phantomToken, err := GenerateID()
	if err != nil {
		return "", err
	}

	data, err := rec.Marshal()
	if err != nil {
		return "", err
	}

	if err := m.store.SetWithTTL(ctx, RecordKey(phantomToken), data, ttl); err != nil {
		return "", fmt.Errorf("session: failed to persist record: %w", err)
	}

	// Index membership outlives any single session so logout-all keeps
	// working across re-logins.
	indexKey := IndexKey(userID)
	if err := m.store.AddToSet(ctx, indexKey, phantomToken); err != nil {
		return "", fmt.Errorf("session: failed to index session: %w", err)
	}
	if err := m.store.Expire(ctx, indexKey, m.userIndexTTL); err != nil {
		return "", fmt.Errorf("session: failed to extend index ttl: %w", err)
	}

	return phantomToken, nil
}

// Load returns the session record for a phantom token, or nil if the
// token is unknown or expired out of the store.
func (m *Manager) Load(ctx context.Context, phantomToken string) (*Record, error) {
	data, err := m.store.Get(ctx, RecordKey(phantomToken))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return UnmarshalRecord(data)
}

// Save replaces the record for an existing phantom token and resets its TTL.
func (m *Manager) Save(ctx context.Context, phantomToken string, rec Record, ttl time.Duration) error {
	data, err := rec.Marshal()
	if err != nil {
		return err
	}
	return m.store.SetWithTTL(ctx, RecordKey(phantomToken), data, ttl)
}

// Delete removes one session record. Deleting an absent session is a no-op.
func (m *Manager) Delete(ctx context.Context, phantomToken string) error {
	return m.store.Delete(ctx, RecordKey(phantomToken))
}

// DeleteAll removes every session referenced by the user's index, then
// the index itself. Entries whose records already expired are skipped.
// Not atomic: a retry after a partial failure simply finishes the job.
func (m *Manager) DeleteAll(ctx context.Context, userID string) error {
	indexKey := IndexKey(userID)

	tokens, err := m.store.Members(ctx, indexKey)
	if err != nil {
		return fmt.Errorf("session: failed to read index: %w", err)
	}

	for _, token := range tokens {
		if err := m.store.Delete(ctx, RecordKey(token)); err != nil {
			return fmt.Errorf("session: failed to delete record: %w", err)
		}
	}

	return m.store.Delete(ctx, indexKey)
}
