package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_TTL", "")

	cfg := Load()
	assert.Equal(t, "buytoro", cfg.AppName)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "", cfg.PostgresDSN())
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDatabaseURL)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "shop", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", cfg.PostgresDSN())
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{Env: "production", DatabaseURL: "postgres://x"}
	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
	assert.Equal(t, "", cfg.JWTSigningSecret())

	cfg.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	dev := &Config{Env: "development", DatabaseURL: "postgres://x"}
	assert.Equal(t, "devsecret", dev.JWTSigningSecret())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "nope")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")
	t.Setenv("PRODUCT_CACHE_TTL", "soon")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.com, ,http://b.com")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.MailSendEnabled)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.CORSOrigins())
}
