package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for drafts and the shared allowlist.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration. DraftTTL is a duration string
// ("24h"); empty keeps the draft store default.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DraftTTL string `yaml:"draft_ttl"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func draftKey(sessionID string) string {
	return fmt.Sprintf("draft:%s", sessionID)
}

const allowlistKey = "auth:allowed_emails"

// IsAllowed reports whether the email is in the shared allowlist set.
func (c *Client) IsAllowed(ctx context.Context, email string) (bool, error) {
	ok, err := c.rdb.SIsMember(ctx, allowlistKey, email).Result()
	if err != nil {
		return false, fmt.Errorf("sismember failed: %w", err)
	}
	return ok, nil
}

// SeedAllowlist adds emails to the shared allowlist set. Used at startup so a
// config-listed email is allowed on every replica without manual redis edits.
func (c *Client) SeedAllowlist(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	members := make([]any, len(emails))
	for i, e := range emails {
		members[i] = e
	}
	if err := c.rdb.SAdd(ctx, allowlistKey, members...).Err(); err != nil {
		return fmt.Errorf("sadd failed: %w", err)
	}
	return nil
}
