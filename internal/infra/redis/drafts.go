package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Draft is a technician's half-filled ticket form, keyed by browser session.
// Field values are kept as entered, unvalidated; validation happens only on
// submit.
type Draft struct {
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DraftStore persists form drafts with a TTL so abandoned sessions expire on
// their own.
type DraftStore struct {
	client *Client
	ttl    time.Duration
}

// NewDraftStore creates a draft store. A zero ttl falls back to 24h.
func NewDraftStore(client *Client, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DraftStore{client: client, ttl: ttl}
}

// Save stores the draft, resetting its TTL.
func (s *DraftStore) Save(ctx context.Context, sessionID string, draft *Draft) error {
	draft.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.rdb.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Load retrieves the draft for a session. Returns nil when none exists.
func (s *DraftStore) Load(ctx context.Context, sessionID string) (*Draft, error) {
	data, err := s.client.rdb.Get(ctx, draftKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Reset discards the draft for a session.
func (s *DraftStore) Reset(ctx context.Context, sessionID string) error {
	if err := s.client.rdb.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}
