package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/bingo/logging"
)

// DefaultFlushInterval is the flush loop period used when none is given.
const DefaultFlushInterval = time.Second

// ErrClosed is returned by mutations on a closed cache.
var ErrClosed = errors.New("cache is closed")

// PersistentCache is an in-memory TTL cache mirrored to a Store.
// It is safe for concurrent use by multiple goroutines.
type PersistentCache struct {
	name          string
	dir           string
	store         Store
	flushInterval time.Duration
	now           func() time.Time
	log           *logging.Logger

	mu      sync.Mutex
	entries map[string]Entry
	version uint64 // bumped on every mutation
	saved   uint64 // version captured by the last successful save
	closed  bool

	// saveMu serializes writes to the store. Save acquires it with TryLock
	// and drops the request when a save is already running.
	saveMu sync.Mutex

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a PersistentCache.
type Option func(*PersistentCache)

// WithDir sets the directory holding <name>.json for the default file store.
func WithDir(dir string) Option {
	return func(c *PersistentCache) {
		c.dir = dir
	}
}

// WithStore replaces the default file store.
func WithStore(s Store) Option {
	return func(c *PersistentCache) {
		c.store = s
	}
}

// WithFlushInterval sets how often expired entries are swept and dirty
// state is persisted. Non-positive values keep the default.
func WithFlushInterval(d time.Duration) Option {
	return func(c *PersistentCache) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

// WithClock sets the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(c *PersistentCache) {
		c.now = now
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *PersistentCache) {
		c.log = l
	}
}

// New creates a cache named name. Init must be called before use.
func New(name string, opts ...Option) *PersistentCache {
	c := &PersistentCache{
		name:          name,
		flushInterval: DefaultFlushInterval,
		now:           time.Now,
		entries:       make(map[string]Entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logging.New("cache:"+name, nil)
	}
	if c.store == nil {
		dir := c.dir
		if dir == "" {
			dir = DefaultDir()
		}
		c.store = NewFileStore(filepath.Join(dir, name+".json"))
	}

	return c
}

// DefaultDir returns the directory used when WithDir is not given.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "bingo")
}

// Init loads the persisted state and starts the flush loop.
// A missing, empty or malformed document is replaced by an empty one.
// Store failures are returned and leave the store closed. Init must be
// called exactly once, before any other method.
func (c *PersistentCache) Init() error {
	if err := c.store.Open(); err != nil {
		return fmt.Errorf("opening cache %s: %w", c.name, err)
	}

	entries, err := c.load()
	if err != nil {
		if cerr := c.store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing cache %s: %w", c.name, cerr))
		}
		return err
	}

	c.mu.Lock()
	now := c.now()
	for k, e := range entries {
		if e.expired(now) {
			delete(entries, k)
			c.version++
		}
	}
	c.entries = entries
	c.mu.Unlock()

	c.log.Log("cache loaded", "location", c.store.Location(), "entries", len(entries))

	c.StartFlush()
	return nil
}

// load reads the stored document, replacing an unreadable one by an
// empty document.
func (c *PersistentCache) load() (map[string]Entry, error) {
	data, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cache %s: %w", c.name, err)
	}

	entries, err := decode(data)
	if err != nil {
		if len(data) > 0 {
			c.log.Log("discarding unreadable cache", "location", c.store.Location(), "error", err)
		}
		if err := c.store.Write([]byte("{}")); err != nil {
			return nil, fmt.Errorf("resetting cache %s: %w", c.name, err)
		}
		return make(map[string]Entry), nil
	}
	return entries, nil
}

// Get returns a copy of the raw JSON value stored under key.
// An expired entry is evicted and reported as missing.
func (c *PersistentCache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(e.Value), true
}

// lookup finds a live entry, evicting it if expired. Caller holds c.mu.
func (c *PersistentCache) lookup(key string) (Entry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		c.version++
		return Entry{}, false
	}
	return e, true
}

// GetJSON decodes the value stored under key into v.
func (c *PersistentCache) GetJSON(key string, v any) (bool, error) {
	raw, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// GetString returns the string stored under key. A value of another
// type is reported as missing.
func (c *PersistentCache) GetString(key string) (string, bool) {
	var s string
	ok, err := c.GetJSON(key, &s)
	if !ok || err != nil {
		return "", false
	}
	return s, true
}

// GetInt returns the integer stored under key. A value of another type
// is reported as missing.
func (c *PersistentCache) GetInt(key string) (int64, bool) {
	var n int64
	ok, err := c.GetJSON(key, &n)
	if !ok || err != nil {
		return 0, false
	}
	return n, true
}

// Has reports whether key holds a live entry, evicting it if expired.
func (c *PersistentCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Expiry returns the expiration time of a live entry.
// The zero time means the entry never expires.
func (c *PersistentCache) Expiry(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookup(key)
	if !ok {
		return time.Time{}, false
	}
	return e.ExpireAt, true
}

// TTL returns the remaining lifetime of a live entry, measured with the
// cache clock. Zero means the entry never expires.
func (c *PersistentCache) TTL(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookup(key)
	if !ok {
		return 0, false
	}
	if e.ExpireAt.IsZero() {
		return 0, true
	}
	return e.ExpireAt.Sub(c.now()), true
}

// Set stores value (encoded as JSON) under key. A ttl <= 0 means the entry
// never expires. Set does not write to the store; persistence happens on
// the next flush or an explicit Save.
func (c *PersistentCache) Set(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	e := Entry{Key: key, Value: raw}
	if ttl > 0 {
		e.ExpireAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	c.version++
	return nil
}

// SetMany stores several values with one shared expiration, computed once
// from ttl. Nothing is stored if any value fails to encode.
func (c *PersistentCache) SetMany(values map[string]any, ttl time.Duration) error {
	raws := make(map[string]json.RawMessage, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding %q: %w", key, err)
		}
		raws[key] = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	var expireAt time.Time
	if ttl > 0 {
		expireAt = c.now().Add(ttl)
	}
	for key, raw := range raws {
		c.entries[key] = Entry{Key: key, Value: raw, ExpireAt: expireAt}
	}
	c.version++
	return nil
}

// Update replaces the value of a live entry and keeps its expiration.
// It reports false, without storing anything, if key is missing or expired.
func (c *PersistentCache) Update(key string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encoding %q: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}

	e, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	e.Value = raw
	c.entries[key] = e
	c.version++
	return true, nil
}

// Delete removes key and reports whether it was present.
func (c *PersistentCache) Delete(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}

	if _, ok := c.lookup(key); !ok {
		return false, nil
	}
	delete(c.entries, key)
	c.version++
	return true, nil
}

// Clear removes all entries.
func (c *PersistentCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.entries = make(map[string]Entry)
	c.version++
	return nil
}

// Entries returns copies of all live entries sorted by key.
func (c *PersistentCache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.expired(now) {
			continue
		}
		e.Value = bytes.Clone(e.Value)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns the keys of all live entries, sorted.
func (c *PersistentCache) Keys() []string {
	entries := c.Entries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries held in memory, including expired
// ones that have not been swept yet.
func (c *PersistentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Dirty reports whether in-memory state changed since the last save.
func (c *PersistentCache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version != c.saved
}

// Closed reports whether Close has been called.
func (c *PersistentCache) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Name returns the cache name.
func (c *PersistentCache) Name() string {
	return c.name
}

// Location returns the store location.
func (c *PersistentCache) Location() string {
	return c.store.Location()
}

// Save writes the full state to the store. If another save is running,
// Save returns nil without writing; the cache stays dirty until a later
// save succeeds, so no update is lost.
func (c *PersistentCache) Save() error {
	if !c.saveMu.TryLock() {
		c.log.Log("save already in progress, skipping")
		return nil
	}
	defer c.saveMu.Unlock()

	return c.save()
}

// save writes a snapshot of the entries. Caller holds c.saveMu.
func (c *PersistentCache) save() error {
	c.mu.Lock()
	version := c.version
	data, err := encode(c.entries)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := c.store.Write(data); err != nil {
		return fmt.Errorf("saving cache %s: %w", c.name, err)
	}

	c.mu.Lock()
	if version > c.saved {
		c.saved = version
	}
	c.mu.Unlock()

	c.log.Log("cache saved", "location", c.store.Location(), "bytes", len(data))
	return nil
}

// Close stops the flush loop, waits for a running save, writes the final
// state if dirty and closes the store. Calling Close again is a no-op.
func (c *PersistentCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.StopFlush()

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	var errs []error
	if c.Dirty() {
		if err := c.save(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing cache %s: %w", c.name, err))
	}

	c.log.Log("cache closed")
	return errors.Join(errs...)
}
