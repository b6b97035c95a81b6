package intent

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultSessionTTL bounds how long a remembered intent can anchor
// follow-up questions.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore remembers each user's last parsed intent so follow-up
// questions can be resolved against it. Entries expire after the TTL and
// the store is bounded, so abandoned sessions cost nothing.
type SessionStore struct {
	cache *ristretto.Cache[int64, ParsedIntent]
	ttl   time.Duration
}

// NewSessionStore creates a bounded TTL store for last intents.
func NewSessionStore(ttl time.Duration) (*SessionStore, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config[int64, ParsedIntent]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &SessionStore{
		cache: cache,
		ttl:   ttl,
	}, nil
}

// Remember stores the user's last intent, replacing any prior one.
func (s *SessionStore) Remember(userID int64, parsed ParsedIntent) {
	s.cache.SetWithTTL(userID, parsed, 1, s.ttl)
	// Writes are buffered; wait so an immediate follow-up sees the
	// intent it follows.
	s.cache.Wait()
}

// Last returns the user's most recent intent, if any is still live.
func (s *SessionStore) Last(userID int64) (ParsedIntent, bool) {
	return s.cache.Get(userID)
}

// Forget drops the user's remembered intent.
func (s *SessionStore) Forget(userID int64) {
	s.cache.Del(userID)
}

// Close releases the store.
func (s *SessionStore) Close() {
	s.cache.Close()
}
