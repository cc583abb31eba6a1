package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/buytoro/pkg/helpers"
)

// Storage persists state slices as JSON under a key.
type Storage interface {
	// Load decodes the value under key into dest. found is false when the
	// key has never been saved.
	Load(key string, dest any) (found bool, err error)
	Save(key string, value any) error
	Delete(key string) error
}

// MemoryStorage keeps encoded values in a map. Values round-trip through
// JSON so it behaves like the durable implementations.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Load(key string, dest any) (bool, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *MemoryStorage) Save(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// FileStorage writes one JSON file per key under Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStorage{Dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileStorage) Load(key string, dest any) (bool, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dest)
}

// Save replaces the file atomically.
func (f *FileStorage) Save(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RedisStorage keeps a session in Redis, for shoppers whose state follows
// them across processes. Keys are "<Prefix>:<key>".
type RedisStorage struct {
	Client  redis.Cmdable
	Prefix  string
	TTL     time.Duration
	Timeout time.Duration
}

func NewRedisStorage(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{Client: rdb, Prefix: "storefront:" + sessionID, TTL: ttl, Timeout: 3 * time.Second}
}

func (r *RedisStorage) key(k string) string { return r.Prefix + ":" + k }

func (r *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.Timeout)
}

func (r *RedisStorage) Load(key string, dest any) (bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	var raw json.RawMessage
	found, err := helpers.RedisGetJSON(ctx, r.Client, r.key(key), &raw)
	if err != nil || !found {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

func (r *RedisStorage) Save(key string, value any) error {
	ctx, cancel := r.ctx()
	defer cancel()
	return helpers.RedisSetJSON(ctx, r.Client, r.key(key), value, r.TTL)
}

func (r *RedisStorage) Delete(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	return helpers.RedisDel(ctx, r.Client, r.key(key))
}
