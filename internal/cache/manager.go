package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironsheep/graphsnap/internal/graph"
	"github.com/ironsheep/graphsnap/internal/logging"
)

// keyPrefix namespaces this application's entries in the remote store.
const keyPrefix = "graphsnap:"

// tier identifies the storage backend an operation is routed to first.
type tier int

const (
	tierLocal tier = iota
	tierRemote
)

// Options configures the cache manager.
type Options struct {
	// Dir is the local file cache directory. Created (idempotently) at
	// construction.
	Dir string

	// RedisURL enables the remote tier when non-empty, e.g.
	// "redis://localhost:6379/0". The remote tier is only used when it
	// is reachable at construction time.
	RedisURL string

	// TTL is the time-to-live of cache entries. Entries older than the
	// TTL are logically dead and treated as absent even when still
	// physically stored.
	TTL time.Duration
}

// Manager is the two-tier result cache.
//
// The fast remote key-value tier is selected at construction when
// configured and reachable; the local file tier is always available as the
// fallback. Any remote failure during a single operation degrades silently
// to the file tier: callers never see backend errors, only hit/miss and
// success flags.
//
// The file tier stores one JSON document per key, with staleness determined
// by file modification time against the TTL: an expired or corrupt file is
// deleted and treated as a miss. The remote tier stores gob blobs under
// expiring keys. Both representations round-trip to an identical in-memory
// DetectionResult.
//
// A Manager is safe for concurrent use; the file tier relies on
// last-write-wins whole-file writes and the remote client is itself
// concurrency-safe.
type Manager struct {
	dir    string
	ttl    time.Duration
	tier   tier
	client *redis.Client
	log    *slog.Logger
}

// NewManager creates the cache manager, ensuring the local cache directory
// exists and probing the remote store once to select the active tier.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("cache directory not configured")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	m := &Manager{
		dir:  opts.Dir,
		ttl:  ttl,
		tier: tierLocal,
		log:  logging.New("cache"),
	}

	if opts.RedisURL != "" {
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			m.log.Warn("invalid redis URL, using file cache only", "error", err)
			return m, nil
		}
		client := redis.NewClient(redisOpts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			m.log.Warn("remote cache unreachable, using file cache only",
				"error", fmt.Errorf("%w: %v", graph.ErrCacheUnavailable, err))
			client.Close()
			return m, nil
		}

		m.client = client
		m.tier = tierRemote
	}
	return m, nil
}

// Close releases the remote client if the remote tier is active.
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Get returns the cached result for key, or ok=false on a miss. Expired
// and corrupt entries count as misses and are removed.
func (m *Manager) Get(ctx context.Context, key string) (*graph.DetectionResult, bool) {
	if m.tier == tierRemote {
		if result, ok := m.remoteGet(ctx, key); ok {
			return result, true
		}
	}
	return m.fileGet(key)
}

// Set stores the result under key in the active tier, falling back to the
// file tier when the remote write fails. Reports whether any tier accepted
// the entry.
func (m *Manager) Set(ctx context.Context, key string, result *graph.DetectionResult) bool {
	if m.tier == tierRemote && m.remoteSet(ctx, key, result) {
		return true
	}
	return m.fileSet(key, result)
}

// Invalidate removes the entry for key from every tier. Reports whether
// all removals succeeded.
func (m *Manager) Invalidate(ctx context.Context, key string) bool {
	ok := true
	if m.tier == tierRemote {
		if err := m.client.Del(ctx, keyPrefix+key).Err(); err != nil {
			m.log.Warn("remote invalidate failed", "key", key, "error", err)
			ok = false
		}
	}

	path := m.filePath(key)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			m.log.Warn("file invalidate failed", "key", key, "error", err)
			ok = false
		}
	}
	return ok
}

// Clear removes all entries from every tier. Reports whether the sweep
// completed without failures.
func (m *Manager) Clear(ctx context.Context) bool {
	ok := true
	if m.tier == tierRemote {
		if err := m.remoteClear(ctx); err != nil {
			m.log.Warn("remote clear failed", "error", err)
			ok = false
		}
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.log.Warn("file clear failed", "error", err)
		return false
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
			m.log.Warn("file clear failed", "name", entry.Name(), "error", err)
			ok = false
		}
	}
	return ok
}

func (m *Manager) filePath(key string) string {
	return filepath.Join(m.dir, key+".json")
}

func (m *Manager) remoteGet(ctx context.Context, key string) (*graph.DetectionResult, bool) {
	data, err := m.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		m.log.Warn("remote get failed, falling back to file tier", "key", key, "error", err)
		return nil, false
	}

	var result graph.DetectionResult
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&result); err != nil {
		m.log.Warn("corrupt remote entry", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (m *Manager) remoteSet(ctx context.Context, key string, result *graph.DetectionResult) bool {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(result); err != nil {
		m.log.Warn("failed to encode result for remote tier", "key", key, "error", err)
		return false
	}
	if err := m.client.Set(ctx, keyPrefix+key, buf.Bytes(), m.ttl).Err(); err != nil {
		m.log.Warn("remote set failed, falling back to file tier", "key", key, "error", err)
		return false
	}
	return true
}

func (m *Manager) remoteClear(ctx context.Context) error {
	iter := m.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (m *Manager) fileGet(key string) (*graph.DetectionResult, bool) {
	path := m.filePath(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) >= m.ttl {
		os.Remove(path)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var result graph.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		m.log.Warn("corrupt cache file removed", "key", key, "error", err)
		os.Remove(path)
		return nil, false
	}
	return &result, true
}

func (m *Manager) fileSet(key string, result *graph.DetectionResult) bool {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		m.log.Warn("failed to encode result for file tier", "key", key, "error", err)
		return false
	}
	if err := os.WriteFile(m.filePath(key), data, 0o644); err != nil {
		m.log.Warn("failed to write cache file", "key", key, "error", err)
		return false
	}
	return true
}
