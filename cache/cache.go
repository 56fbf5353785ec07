// Package cache provides a persistent, TTL-aware key/value cache.
//
// A PersistentCache keeps its entries in memory and mirrors them to a Store
// (a JSON file by default). Expired entries are evicted lazily on read and
// by a background flush loop, which also persists dirty state.
//
//	c := cache.New("en-de", cache.WithDir(dir))
//	if err := c.Init(); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	_ = c.Set("token", "abc", time.Hour)
//	tok, ok := c.GetString("token")
//
// Each cache exclusively owns its store location. Pointing two caches, in
// this or another process, at the same location is not supported.
package cache

// Store is the storage capability a PersistentCache persists to.
type Store interface {
	// Open makes sure the backing location exists, creating it if needed.
	Open() error

	// Load returns the stored document, or nil if it is empty.
	Load() ([]byte, error)

	// Write replaces the stored document with data.
	Write(data []byte) error

	// Close releases any handle held by the store.
	Close() error

	// Location describes where the data lives (a path or a key).
	Location() string
}
