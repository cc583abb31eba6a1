package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/buytoro/internal/interface/middleware"
)

// Guard carries the shared auth middleware and the Redis client used for
// rate limiting. A nil RDB disables limits.
type Guard struct {
	Protect gin.HandlerFunc
	RDB     *redis.Client
}

// Authenticated is Protect followed by the per-IP and per-user limits.
func (g Guard) Authenticated() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		g.Protect,
		g.limit("api-ip", 300, middleware.KeyByIP()),
		g.limit("api-user", 120, middleware.KeyByUserID()),
	}
}

// Admin is Authenticated plus the admin check.
func (g Guard) Admin() []gin.HandlerFunc {
	return append(g.Authenticated(), middleware.AdminOnly())
}

// limit is a per-minute limit named name.
func (g Guard) limit(name string, perMinute int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(g.RDB, middleware.Limit{Name: name, Max: perMinute, Window: time.Minute, Key: key})
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}
