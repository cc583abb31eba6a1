package memory

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type kvEntry struct {
	value   string
	expires time.Time
}

// KV is an in-process stand-in for helpers.RedisKV.
type KV struct {
	mu   sync.Mutex
	data map[string]kvEntry
	now  func() time.Time
}

func NewKV() *KV {
	return &KV{data: map[string]kvEntry{}, now: time.Now}
}

func (k *KV) live(key string) (kvEntry, bool) {
	e, ok := k.data[key]
	if !ok {
		return kvEntry{}, false
	}
	if !e.expires.IsZero() && !k.now().Before(e.expires) {
		delete(k.data, key)
		return kvEntry{}, false
	}
	return e, true
}

func (k *KV) put(key, value string, ttl time.Duration) {
	e := kvEntry{value: value}
	if ttl > 0 {
		e.expires = k.now().Add(ttl)
	}
	k.data[key] = e
}

func (k *KV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.live(key)
	return e.value, ok, nil
}

func (k *KV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.put(key, value, ttl)
	return nil
}

func (k *KV) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.live(key); ok {
		return false, nil
	}
	k.put(key, value, ttl)
	return true, nil
}

func (k *KV) Incr(_ context.Context, key string) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, _ := k.live(key)
	n, _ := strconv.ParseInt(e.value, 10, 64)
	n++
	e.value = strconv.FormatInt(n, 10)
	k.data[key] = e
	return n, nil
}

func (k *KV) Del(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

// Len counts live keys.
func (k *KV) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for key := range k.data {
		if _, ok := k.live(key); ok {
			n++
		}
	}
	return n
}
