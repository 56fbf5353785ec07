package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	Name       string            `json:"name"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry. Expire is an epoch-millisecond
// timestamp, or nil for entries that never expire.
type ExportEntry struct {
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
	Expire *int64          `json:"expire"`
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache *PersistentCache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache *PersistentCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the live cache entries to w in JSON format.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	entries := e.cache.Entries()

	export := ExportFormat{
		Version:    "1.0",
		Name:       e.cache.Name(),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(entries)),
		Metadata:   metadata,
	}

	for _, entry := range entries {
		r := entry.record()
		export.Entries = append(export.Entries, ExportEntry{
			Key:    r.Key,
			Value:  r.Value,
			Expire: r.Expire,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(f, metadata)
}

// Importer provides cache import functionality.
type Importer struct {
	cache *PersistentCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache *PersistentCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads entries from r and stores them in the cache, keeping their
// remaining TTL. Entries that already expired are skipped.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	now := i.cache.now()
	for _, ee := range export.Entries {
		entry := record{Key: ee.Key, Value: ee.Value, Expire: ee.Expire}.entry(ee.Key)
		if entry.expired(now) {
			result.Expired++
			continue
		}

		var ttl time.Duration
		if !entry.ExpireAt.IsZero() {
			ttl = entry.ExpireAt.Sub(now)
		}

		if err := i.cache.Set(entry.Key, entry.Value, ttl); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Expired  int
	Failed   int
}
