package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "eduvibe", cfg.DBName)
	assert.Equal(t, 72*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Recommendation.CacheTTL)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxSizeBytes)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}, cfg.Uploads.AllowedMIMEs)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestOverridesFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_EXPIRATION", "1h")
	t.Setenv("STRIPE_CURRENCY", "EUR")
	t.Setenv("RECOMMENDATION_CACHE_TTL", "not-a-duration")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, 5*time.Minute, cfg.Recommendation.CacheTTL)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
