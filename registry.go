package bingo

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/ZaguanLabs/bingo/cache"
	"github.com/ZaguanLabs/bingo/logging"
)

// ErrRegistryClosed is returned by a Registry after Close.
var ErrRegistryClosed = errors.New("registry is closed")

// StoreFactory returns the store backing the cache of a language pair.
// Returning nil keeps the default file store.
type StoreFactory func(pair string) cache.Store

// Registry memoizes one Session per language pair. It is safe for
// concurrent use.
type Registry struct {
	provider     SessionProvider
	cacheOptions []cache.Option
	storeFactory StoreFactory
	base         *slog.Logger
	log          *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCacheOptions adds options applied to every session cache.
func WithCacheOptions(opts ...cache.Option) RegistryOption {
	return func(r *Registry) {
		r.cacheOptions = append(r.cacheOptions, opts...)
	}
}

// WithStoreFactory sets how session caches are persisted.
func WithStoreFactory(f StoreFactory) RegistryOption {
	return func(r *Registry) {
		r.storeFactory = f
	}
}

// WithLogger sets the slog logger used by the registry, its sessions and
// their caches.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.base = l
	}
}

// NewRegistry creates a registry whose sessions use p.
func NewRegistry(p SessionProvider, opts ...RegistryOption) *Registry {
	r := &Registry{
		provider: p,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logging.New("registry", r.base)
	return r
}

// PairKey returns the session and cache name of a language pair.
func PairKey(from, to string) string {
	return from + "-" + to
}

// Session returns the session for a language pair, creating and
// initializing its cache on first use.
func (r *Registry) Session(from, to string) (*Session, error) {
	if err := ValidatePair(from, to); err != nil {
		return nil, err
	}

	pair := PairKey(from, to)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if s, ok := r.sessions[pair]; ok {
		return s, nil
	}

	opts := []cache.Option{cache.WithLogger(logging.New("cache:"+pair, r.base))}
	opts = append(opts, r.cacheOptions...)
	if r.storeFactory != nil {
		if store := r.storeFactory(pair); store != nil {
			opts = append(opts, cache.WithStore(store))
		}
	}

	c := cache.New(pair, opts...)
	if err := c.Init(); err != nil {
		return nil, &CacheError{Message: "initializing session cache " + pair, Cause: err}
	}

	s := newSession(from, to, r.provider, c, logging.New("session:"+pair, r.base))
	r.sessions[pair] = s
	r.log.Log("session created", "pair", pair, "location", c.Location())
	return s, nil
}

// Translate translates text from one language to another. An invalid pair
// fails with a *ValidationError before any cache or network activity.
func (r *Registry) Translate(ctx context.Context, text, from, to string) (*TranslationResult, error) {
	s, err := r.Session(from, to)
	if err != nil {
		return nil, err
	}
	return s.Translate(ctx, text)
}

// Len returns the number of sessions created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Pairs returns the keys of all sessions, sorted.
func (r *Registry) Pairs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	pairs := make([]string, 0, len(r.sessions))
	for pair := range r.sessions {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Close closes every session cache and returns their joined errors.
// Calling Close again is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sessions := r.sessions
	r.mu.Unlock()

	var errs []error
	for pair, s := range sessions {
		if err := s.Close(); err != nil {
			r.log.Error("closing session", err, "pair", pair)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
