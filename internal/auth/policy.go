// Package auth holds the allowlist that gates ticket entry. The service sits
// behind an SSO proxy that injects the signed-in user's email; whether that
// email may write tickets is decided here, by an injected policy rather than
// ambient global state.
package auth

import (
	"context"
	"log/slog"
	"strings"

	redisclient "github.com/vndesk/helpdesk/internal/infra/redis"
)

// Policy decides whether an identity may use the service.
type Policy interface {
	IsAllowed(ctx context.Context, email string) bool
}

// Allowlist is a static, case-insensitive email allowlist. An empty list
// allows everyone, matching deployments that predate the access control.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist from config. Entries are trimmed and
// lowercased; blanks are dropped.
func NewAllowlist(emails []string) *Allowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &Allowlist{emails: set}
}

// IsAllowed reports whether the email is on the list.
func (a *Allowlist) IsAllowed(_ context.Context, email string) bool {
	if len(a.emails) == 0 {
		return true
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RedisPolicy checks the shared redis allowlist set so additions made on one
// replica apply everywhere. When redis is unreachable it falls back to the
// static list instead of locking everyone out.
type RedisPolicy struct {
	client   *redisclient.Client
	fallback *Allowlist
	log      *slog.Logger
}

// NewRedisPolicy creates a redis-backed policy with a static fallback.
func NewRedisPolicy(client *redisclient.Client, fallback *Allowlist, log *slog.Logger) *RedisPolicy {
	if log == nil {
		log = slog.Default()
	}
	return &RedisPolicy{client: client, fallback: fallback, log: log}
}

// IsAllowed checks redis first, the static list on error.
func (p *RedisPolicy) IsAllowed(ctx context.Context, email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	ok, err := p.client.IsAllowed(ctx, normalized)
	if err != nil {
		p.log.Warn("allowlist lookup failed, using static fallback", "error", err)
		return p.fallback.IsAllowed(ctx, email)
	}
	return ok
}
