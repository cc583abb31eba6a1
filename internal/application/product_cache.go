package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/domain/entity"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v"
	productCacheVersionKey = "products:version"
)

// ProductCache keeps product pages and details in Redis. Lists are keyed by
// a version counter so a single INCR invalidates every cached page.
type ProductCache struct {
	KV     KeyValue
	TTL    time.Duration
	Logger *logrus.Logger
}

// NewProductCache returns nil when kv is nil; a nil cache never hits.
func NewProductCache(kv KeyValue, ttl time.Duration, logger *logrus.Logger) *ProductCache {
	if kv == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{KV: kv, TTL: ttl, Logger: logger}
}

func (c *ProductCache) version(ctx context.Context) (int64, error) {
	v, ok, err := c.KV.Get(ctx, productCacheVersionKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func (c *ProductCache) listKey(version int64, q ProductQuery) string {
	return fmt.Sprintf("%s%d:kw=%s:brand=%s:p=%d:ps=%d", productListCachePrefix, version, q.Keyword, q.Brand, q.Page, q.PageSize)
}

func (c *ProductCache) getJSON(ctx context.Context, key string, dest any) bool {
	raw, ok, err := c.KV.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.warn(err, key, "unmarshal cached value failed")
		return false
	}
	return true
}

func (c *ProductCache) setJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.warn(err, key, "marshal cache value failed")
		return
	}
	if err := c.KV.Set(ctx, key, string(b), c.TTL); err != nil {
		c.warn(err, key, "cache set failed")
	}
}

func (c *ProductCache) warn(err error, key, msg string) {
	if c.Logger != nil {
		c.Logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

func (c *ProductCache) GetPage(ctx context.Context, q ProductQuery) (*ProductPage, bool) {
	if c == nil {
		return nil, false
	}
	v, err := c.version(ctx)
	if err != nil {
		return nil, false
	}
	var page ProductPage
	if !c.getJSON(ctx, c.listKey(v, q), &page) {
		return nil, false
	}
	return &page, true
}

func (c *ProductCache) SetPage(ctx context.Context, q ProductQuery, page *ProductPage) {
	if c == nil {
		return
	}
	v, err := c.version(ctx)
	if err != nil {
		return
	}
	c.setJSON(ctx, c.listKey(v, q), page)
}

func (c *ProductCache) GetProduct(ctx context.Context, id string) (*entity.Product, bool) {
	if c == nil {
		return nil, false
	}
	var p entity.Product
	if !c.getJSON(ctx, productCachePrefix+id, &p) {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) SetProduct(ctx context.Context, p *entity.Product) {
	if c == nil {
		return
	}
	c.setJSON(ctx, productCachePrefix+p.ID, p)
}

// Invalidate drops every cached list and the given product's detail entry.
func (c *ProductCache) Invalidate(ctx context.Context, productID string) {
	if c == nil {
		return
	}
	if _, err := c.KV.Incr(ctx, productCacheVersionKey); err != nil && c.Logger != nil {
		c.Logger.WithError(err).WithField("product_id", productID).Error("product cache invalidation failed")
	}
	if productID != "" {
		_ = c.KV.Del(ctx, productCachePrefix+productID)
	}
}
