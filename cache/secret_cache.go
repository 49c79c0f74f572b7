package cache

import (
	"context"
	"encoding/json"
)

// SecretCache memoizes the backend's verdict on one-time email secrets so a
// page reload does not hit the backend twice for the same link. Entries are
// TTL-bounded: secrets are single-use with a short lifetime, so anything
// older than the window is worthless anyway.
//
// Implementations must be safe for concurrent use; last-writer-wins is fine
// because the payload for a given secret is idempotent.
type SecretCache interface {
	// Get returns the cached payload for secret, if present and fresh.
	Get(ctx context.Context, secret string) (json.RawMessage, bool)
	// Set stores the payload for secret for the cache's TTL window.
	Set(ctx context.Context, secret string, payload json.RawMessage) error
	// Close releases any background resources held by the cache.
	Close() error
}
