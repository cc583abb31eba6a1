package storefront

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	var items []CartItem
	found, err := fs.Load(KeyCartItems, &items)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, fs.Save(KeyCartItems, []CartItem{{Product: "a", Qty: 2}}))
	found, err = fs.Load(KeyCartItems, &items)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []CartItem{{Product: "a", Qty: 2}}, items)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are renamed into place")

	require.NoError(t, fs.Delete(KeyCartItems))
	require.NoError(t, fs.Delete(KeyCartItems))
	found, err = fs.Load(KeyCartItems, &items)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreOverFileStorage(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	s := NewStore(fs, quietLogger())
	require.NoError(t, s.AddToCart(watch("a", 10, 3), 3))
	require.NoError(t, s.ToggleWishlist("a"))

	st := NewStore(fs, quietLogger()).State()
	require.Len(t, st.CartItems, 1)
	assert.Equal(t, 3, st.CartItems[0].Qty)
	assert.Equal(t, 3, st.CartItems[0].CountInStock)
	assert.Equal(t, []string{"a"}, st.Wishlist)
}

// kvRedis implements the Get/Set/Del slice of redis.Cmdable over a map.
type kvRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
}

func newKVRedis() *kvRedis {
	return &kvRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (k *kvRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := k.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (k *kvRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		k.data[key] = string(v)
	case string:
		k.data[key] = v
	default:
		return redis.NewStatusResult("", fmt.Errorf("unsupported value %T", value))
	}
	k.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (k *kvRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := k.data[key]; ok {
			delete(k.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStorage(t *testing.T) {
	rdb := newKVRedis()
	rs := NewRedisStorage(rdb, "abc", time.Hour)

	var user UserInfo
	found, err := rs.Load(KeyUserInfo, &user)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rs.Save(KeyUserInfo, UserInfo{ID: "u1", Token: "tok"}))
	assert.Contains(t, rdb.data, "storefront:abc:userInfo")
	assert.Equal(t, time.Hour, rdb.ttls["storefront:abc:userInfo"])

	found, err = rs.Load(KeyUserInfo, &user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok", user.Token)

	require.NoError(t, rs.Delete(KeyUserInfo))
	found, err = rs.Load(KeyUserInfo, &user)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreOverRedisStorage(t *testing.T) {
	rdb := newKVRedis()
	s := NewStore(NewRedisStorage(rdb, "sess-1", 0), quietLogger())
	require.NoError(t, s.AddToCart(watch("a", 10, 3), 2))
	require.NoError(t, s.SavePaymentMethod("CARD"))

	st := NewStore(NewRedisStorage(rdb, "sess-1", 0), quietLogger()).State()
	require.Len(t, st.CartItems, 1)
	assert.Equal(t, 2, st.CartItems[0].Qty)
	assert.Equal(t, "CARD", st.PaymentMethod)

	other := NewStore(NewRedisStorage(rdb, "sess-2", 0), quietLogger()).State()
	assert.Empty(t, other.CartItems)
}
