package aggregator_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	agg "wisefido-risk/internal/aggregator"
)

// 租户缓存 key（与 CacheManager 一致）
func summaryKey(tenantID string) string { return "risk:cohort:" + tenantID + ":summary" }
func cardsKey(tenantID string) string { return "risk:cohort:" + tenantID + ":cards" }

// fakeKVStore 内存 KVStore：时钟可控，记录每个 key 的 TTL 和每次 SetMany 的 key 组
type fakeKVStore struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
	batches [][]string
	setErr  error
}

type fakeEntry struct {
	value   string
	ttl     time.Duration
	expires time.Time // zero = no ttl
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{
		now:     time.Unix(1700000000, 0),
		entries: make(map[string]fakeEntry),
	}
}

func (f *fakeKVStore) GetMany(ctx context.Context, keys ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		e, ok := f.entries[key]
		if !ok || (!e.expires.IsZero() && !f.now.Before(e.expires)) {
			return nil, fmt.Errorf("%w: %s", agg.ErrCacheMiss, key)
		}
		out = append(out, e.value)
	}
	return out, nil
}

func (f *fakeKVStore) SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}

	var exp time.Time
	if ttl > 0 {
		exp = f.now.Add(ttl)
	}
	batch := make([]string, 0, len(values))
	for key, value := range values {
		f.entries[key] = fakeEntry{value: value, ttl: ttl, expires: exp}
		batch = append(batch, key)
	}
	sort.Strings(batch)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeKVStore) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeKVStore) raw(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	return e.value, ok
}

func (f *fakeKVStore) ttl(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[key].ttl
}

func (f *fakeKVStore) deleteKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
}
