package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.UsingDefaultSecret())
	assert.Equal(t, 72*time.Hour, cfg.JWT.TTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_RATE_PER_MIN", "5")

	cfg := Load()

	assert.False(t, cfg.UsingDefaultSecret())
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.AuthRatePerMin)
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "3307", User: "app", Password: "pw", Name: "cinestream"}

	dsn := c.DSN()

	assert.Contains(t, dsn, "app:pw@tcp(db:3307)/cinestream")
	assert.Contains(t, dsn, "parseTime=true")
}
