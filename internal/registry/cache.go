package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "greenboard:registry:"

// snapshotPayload is the serialized form of a snapshot. Entries keep
// insertion order so a cache round-trip does not reshuffle fuzzy matching.
type snapshotPayload struct {
	Kind     Kind           `json:"kind"`
	LoadedAt time.Time      `json:"loaded_at"`
	Entries  []payloadEntry `json:"entries"`
}

type payloadEntry struct {
	Key    string `json:"key"`
	Record Record `json:"record"`
}

// Cache stores registry snapshots in redis. The payload key is persistent —
// it is the last-good copy the loaders fall back to when a download fails —
// while a separate marker key with a TTL tracks freshness.
type Cache struct {
	rdb *redis.Client
}

// NewCache wraps an established redis client.
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func payloadKey(kind Kind) string { return cachePrefix + kind.String() }
func freshKey(kind Kind) string   { return payloadKey(kind) + ":fresh" }

// Get returns the cached snapshot for kind, if any, and whether it is still
// fresh. A missing payload returns (nil, false, nil).
func (c *Cache) Get(ctx context.Context, kind Kind) (*Snapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, payloadKey(kind)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read registry cache: %w", err)
	}

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("decode registry cache: %w", err)
	}

	snap := &Snapshot{
		kind:     payload.Kind,
		records:  make(map[string]Record, len(payload.Entries)),
		LoadedAt: payload.LoadedAt,
	}
	for _, e := range payload.Entries {
		if _, exists := snap.records[e.Key]; exists {
			continue
		}
		snap.keys = append(snap.keys, e.Key)
		snap.records[e.Key] = e.Record
	}

	fresh, err := c.rdb.Exists(ctx, freshKey(kind)).Result()
	if err != nil {
		return snap, false, nil
	}

	return snap, fresh > 0, nil
}

// Put stores the snapshot and arms the freshness marker for ttl.
func (c *Cache) Put(ctx context.Context, snap *Snapshot, ttl time.Duration) error {
	payload := snapshotPayload{
		Kind:     snap.kind,
		LoadedAt: snap.LoadedAt,
		Entries:  make([]payloadEntry, 0, len(snap.keys)),
	}
	for _, key := range snap.keys {
		payload.Entries = append(payload.Entries, payloadEntry{Key: key, Record: snap.records[key]})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode registry cache: %w", err)
	}

	if err := c.rdb.Set(ctx, payloadKey(snap.kind), raw, 0).Err(); err != nil {
		return fmt.Errorf("write registry cache: %w", err)
	}
	if err := c.rdb.Set(ctx, freshKey(snap.kind), "1", ttl).Err(); err != nil {
		return fmt.Errorf("arm registry cache marker: %w", err)
	}

	return nil
}
