package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
	hasTTL    bool
}

func (e memEntry) isExpired(now time.Time) bool {
	return e.hasTTL && now.After(e.expiresAt)
}

// MemoryKVStore is a process-local KVStore. Expiry is evaluated lazily on
// read and enforced by a periodic sweep, since a plain map has no native TTL.
type MemoryKVStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// NewMemoryKVStore creates an in-memory store and starts its sweep loop.
// A sweepInterval <= 0 disables sweeping (lazy expiry still applies).
func NewMemoryKVStore(sweepInterval time.Duration, logger *zap.Logger) *MemoryKVStore {
	s := &MemoryKVStore{
		entries: make(map[string]memEntry),
		done:    make(chan struct{}),
		logger:  logger,
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

func (s *MemoryKVStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *MemoryKVStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for key, entry := range s.entries {
		if entry.isExpired(now) {
			delete(s.entries, key)
			purged++
		}
	}
	if purged > 0 && s.logger != nil {
		s.logger.Debug("kv store sweep purged expired entries", zap.Int("purged", purged))
	}
}

// Close stops the sweep loop. Safe to call more than once.
func (s *MemoryKVStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if entry.isExpired(time.Now()) {
		delete(s.entries, key)
		return nil, nil
	}
	return entry.value, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry{value: value}
	if ttl > 0 {
		entry.hasTTL = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryKVStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if entry.isExpired(time.Now()) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryKVStore) IncrBy(_ context.Context, key string, delta int64, ttl time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.entries[key]
	if ok && entry.isExpired(now) {
		delete(s.entries, key)
		ok = false
	}

	var count int64
	if ok {
		// Counters are stored as decimal strings, matching Redis semantics.
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err != nil {
			return 0, time.Time{}, err
		}
		count = parsed + delta
		entry.value = []byte(strconv.FormatInt(count, 10))
	} else {
		count = delta
		entry = memEntry{value: []byte(strconv.FormatInt(count, 10))}
		if ttl > 0 {
			entry.hasTTL = true
			entry.expiresAt = now.Add(ttl)
		}
	}
	s.entries[key] = entry

	if entry.hasTTL {
		return count, entry.expiresAt, nil
	}
	return count, time.Time{}, nil
}

var _ KVStore = (*MemoryKVStore)(nil)
