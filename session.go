package bingo

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ZaguanLabs/bingo/cache"
	"github.com/ZaguanLabs/bingo/logging"
)

// Cache keys holding the provider session.
const (
	keyIG     = "IG"
	keyIID    = "IID"
	keyKey    = "key"
	keyToken  = "token"
	keyCookie = "cookie"
	keyCount  = "count"
)

// Session holds one provider session for a language pair and refreshes it
// transparently. Sessions are created by a Registry.
type Session struct {
	from     string
	to       string
	provider SessionProvider
	cache    *cache.PersistentCache
	log      *logging.Logger

	refresh singleflight.Group
	mu      sync.Mutex // serializes counter reservation
}

func newSession(from, to string, p SessionProvider, c *cache.PersistentCache, log *logging.Logger) *Session {
	return &Session{
		from:     from,
		to:       to,
		provider: p,
		cache:    c,
		log:      log,
	}
}

// From returns the source language.
func (s *Session) From() string {
	return s.from
}

// To returns the target language.
func (s *Session) To() string {
	return s.to
}

// Cache returns the cache holding the session.
func (s *Session) Cache() *cache.PersistentCache {
	return s.cache
}

// Translate translates text with the session's language pair. A missing
// or expired session is refreshed first. Failures are not retried.
func (s *Session) Translate(ctx context.Context, text string) (*TranslationResult, error) {
	data, counter, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Log("translating", "counter", counter, "chars", len(text))

	result, err := s.provider.Translate(ctx, TranslateRequest{
		Text:    text,
		From:    s.from,
		To:      s.to,
		Session: data,
		Counter: counter,
	})
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.SessionExpired {
			s.log.Log("session rejected by provider, dropping it")
			if cerr := s.cache.Clear(); cerr != nil {
				s.log.Error("clearing rejected session", cerr)
			}
		}
		s.log.Error("translate failed", err, "from", s.from, "to", s.to)
		return nil, err
	}

	return result, nil
}

// acquire returns valid session data and reserves the next request counter.
func (s *Session) acquire(ctx context.Context) (SessionData, int64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		data, counter, ok, err := s.reserve()
		if err != nil {
			return SessionData{}, 0, err
		}
		if ok {
			return data, counter, nil
		}
		if attempt == 0 {
			if err := s.refreshSession(ctx); err != nil {
				return SessionData{}, 0, err
			}
		}
	}

	return SessionData{}, 0, &UpstreamError{
		Message:        "session expired immediately after refresh",
		SessionExpired: true,
	}
}

// reserve reads the cached session and bumps its counter. ok is false when
// any part of the session is missing or expired.
func (s *Session) reserve() (SessionData, int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data SessionData
	var ok bool

	if data.Cookie, ok = s.cache.GetString(keyCookie); !ok {
		return data, 0, false, nil
	}
	if data.IG, ok = s.cache.GetString(keyIG); !ok {
		return data, 0, false, nil
	}
	if data.IID, ok = s.cache.GetString(keyIID); !ok {
		return data, 0, false, nil
	}
	if data.Key, ok = s.cache.GetString(keyKey); !ok {
		return data, 0, false, nil
	}
	if data.Token, ok = s.cache.GetString(keyToken); !ok {
		return data, 0, false, nil
	}
	counter, ok := s.cache.GetInt(keyCount)
	if !ok {
		return data, 0, false, nil
	}

	if ttl, ok := s.cache.TTL(keyToken); ok {
		data.Expiry = ttl
	}

	updated, err := s.cache.Update(keyCount, counter+1)
	if err != nil {
		return data, 0, false, &CacheError{Message: "storing request counter", Cause: err}
	}
	if !updated {
		return data, 0, false, nil
	}

	return data, counter, true, nil
}

// refreshSession fetches a new session and stores it. Concurrent callers
// share one fetch. The fetch is detached from the caller's cancellation so
// one caller giving up does not fail the others; each caller still stops
// waiting when its own ctx is done.
func (s *Session) refreshSession(ctx context.Context) error {
	fetchCtx := context.WithoutCancel(ctx)

	ch := s.refresh.DoChan("refresh", func() (any, error) {
		s.log.Log("refreshing session")

		data, err := s.provider.FetchSession(fetchCtx)
		if err != nil {
			s.log.Error("session refresh failed", err)
			return nil, err
		}
		if err := s.store(data); err != nil {
			return nil, &CacheError{Message: "storing session", Cause: err}
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.log.Log("joined in-flight session refresh")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// store writes every session field with one expiration taken from the
// provider-declared lifetime.
func (s *Session) store(data *SessionData) error {
	return s.cache.SetMany(map[string]any{
		keyIG:     data.IG,
		keyIID:    data.IID,
		keyKey:    data.Key,
		keyToken:  data.Token,
		keyCookie: data.Cookie,
		keyCount:  1,
	}, data.Expiry)
}

// Close closes the session cache, saving pending state.
func (s *Session) Close() error {
	return s.cache.Close()
}
