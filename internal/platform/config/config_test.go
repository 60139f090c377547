package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/platform/config"
)

func TestFromEnv(t *testing.T) {
	t.Run("requires an administrator", func(t *testing.T) {
		t.Setenv("SOULBOUND_ADMINISTRATOR", "")
		_, err := config.FromEnv()
		require.Error(t, err)
	})

	t.Run("rejects a malformed administrator", func(t *testing.T) {
		t.Setenv("SOULBOUND_ADMINISTRATOR", "not-an-address")
		_, err := config.FromEnv()
		require.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("SOULBOUND_ADMINISTRATOR", "0x00000000000000000000000000000000000000ad")
		t.Setenv("SOULBOUND_ADDR", "")
		t.Setenv("SOULBOUND_TOKEN_TTL", "")

		cfg, err := config.FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
		assert.True(t, cfg.Registry.SeedDeployerToken)
		assert.True(t, cfg.Registry.Authority.IsZero())
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("SOULBOUND_ADMINISTRATOR", "0x00000000000000000000000000000000000000ad")
		t.Setenv("SOULBOUND_AUTHORITY", "0x00000000000000000000000000000000000000aa")
		t.Setenv("SOULBOUND_TOKEN_TTL", "15m")
		t.Setenv("SOULBOUND_KAFKA_BROKERS", "one:9092, two:9092,")

		cfg, err := config.FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
		assert.Equal(t, []string{"one:9092", "two:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "0x00000000000000000000000000000000000000aa", cfg.Registry.Authority.Hex())
	})
}
