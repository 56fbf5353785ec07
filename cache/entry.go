package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a cached value with its expiration time.
type Entry struct {
	Key   string
	Value json.RawMessage
	// ExpireAt is the expiration time. The zero value means never.
	ExpireAt time.Time
}

// expired reports whether the entry is no longer valid at now.
// Lazy eviction and the flush sweep both use this predicate.
func (e Entry) expired(now time.Time) bool {
	return !e.ExpireAt.IsZero() && !now.Before(e.ExpireAt)
}

// record is the on-disk form of an Entry.
// A null or non-positive Expire means the entry never expires.
type record struct {
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
	Expire *int64          `json:"expire"`
}

func (e Entry) record() record {
	r := record{Key: e.Key, Value: e.Value}
	if !e.ExpireAt.IsZero() {
		ms := e.ExpireAt.UnixMilli()
		r.Expire = &ms
	}
	return r
}

func (r record) entry(key string) Entry {
	e := Entry{Key: key, Value: r.Value}
	if r.Expire != nil && *r.Expire > 0 {
		e.ExpireAt = time.UnixMilli(*r.Expire)
	}
	if len(e.Value) == 0 {
		e.Value = json.RawMessage("null")
	}
	return e
}

// encode serializes entries into the document format.
func encode(entries map[string]Entry) ([]byte, error) {
	doc := make(map[string]record, len(entries))
	for k, e := range entries {
		doc[k] = e.record()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding cache: %w", err)
	}
	return data, nil
}

// decode parses a document. Keys of the top-level object win over the
// "key" field of each record.
func decode(data []byte) (map[string]Entry, error) {
	var doc map[string]record
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("cache document is not an object")
	}
	entries := make(map[string]Entry, len(doc))
	for k, r := range doc {
		entries[k] = r.entry(k)
	}
	return entries, nil
}
