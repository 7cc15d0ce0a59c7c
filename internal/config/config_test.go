package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "study")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "4")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "study-room-reservation", cfg.Service)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.DBConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.DBConnectBackoff)
	assert.Equal(t, 300*time.Second, cfg.QRTTL)
	assert.Equal(t, "confirmed", cfg.DefaultReservationStatus)
	assert.Equal(t, "jwt-secret", cfg.QRSecret, "QR secret falls back to the JWT secret")
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QR_SECRET", "qr-secret")
	t.Setenv("QR_TTL", "1m")
	t.Setenv("RESERVATION_DEFAULT_STATUS", "pending")
	t.Setenv("DB_CONNECT_ATTEMPTS", "0")
	t.Setenv("APP_TIMEZONE", "Local")

	cfg := Load()

	assert.Equal(t, "qr-secret", cfg.QRSecret)
	assert.Equal(t, time.Minute, cfg.QRTTL)
	assert.Equal(t, "pending", cfg.DefaultReservationStatus)
	assert.Equal(t, 1, cfg.DBConnectAttempts)
	assert.Equal(t, "Local", cfg.Location.String())
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()

	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 1, rl.RefillTokens)
	assert.Equal(t, 10*time.Second, rl.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_ENABLED", "off")

	cc := LoadCacheConfig()

	assert.False(t, cc.Enabled)
	assert.True(t, cc.Methods["GET"])
	assert.True(t, cc.Methods["HEAD"])
	assert.Equal(t, 10*time.Second, cc.TTL)
}
