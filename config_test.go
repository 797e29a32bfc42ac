package cassorm_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cassorm"
	"github.com/arloliu/cassorm/types"
)

func TestParseConfig(t *testing.T) {
	t.Run("single host", func(t *testing.T) {
		cfg, err := cassorm.ParseConfig(map[string]any{"host": "10.0.0.1", "keyspace": "app"})
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1"}, cfg.Hosts)
	})

	t.Run("comma separated hosts", func(t *testing.T) {
		cfg, err := cassorm.ParseConfig(map[string]any{"host": "10.0.0.1, 10.0.0.2,,", "keyspace": "app"})
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Hosts)
	})

	t.Run("host list", func(t *testing.T) {
		cfg, err := cassorm.ParseConfig(map[string]any{"host": []any{"a", "b"}, "keyspace": "app"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, cfg.Hosts)
	})

	t.Run("weakly typed numbers", func(t *testing.T) {
		cfg, err := cassorm.ParseConfig(map[string]any{
			"keyspace":        "app",
			"port":            "9042",
			"page_size":       "500",
			"timeout":         10,
			"connect_timeout": "2.5",
			"request_timeout": 1,
			"consistency":     "local_one",
			"username":        "cassandra",
			"password":        "cassandra",
			"strict":          "true",
		})
		require.NoError(t, err)
		assert.Equal(t, 9042, cfg.Port)
		assert.Equal(t, 500, cfg.PageSize)
		assert.Equal(t, 10, cfg.Timeout)
		assert.InDelta(t, 2.5, cfg.ConnectTimeout, 1e-9)
		assert.InDelta(t, 1.0, cfg.RequestTimeout, 1e-9)
		assert.Equal(t, "local_one", cfg.Consistency)
		assert.True(t, cfg.Strict)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		cfg, err := cassorm.ParseConfig(map[string]any{"keyspace": "app", "driver": "cassandra"})
		require.NoError(t, err)
		assert.Equal(t, "app", cfg.Keyspace)
	})

	t.Run("malformed value", func(t *testing.T) {
		_, err := cassorm.ParseConfig(map[string]any{"keyspace": "app", "port": "not-a-port"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cassandra.yaml")
	content := `
host:
  - cass-1
  - cass-2
port: 9042
keyspace: orders
consistency: QUORUM
page_size: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := cassorm.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cass-1", "cass-2"}, cfg.Hosts)
	assert.Equal(t, 9042, cfg.Port)
	assert.Equal(t, "orders", cfg.Keyspace)
	assert.Equal(t, "QUORUM", cfg.Consistency)
	assert.Equal(t, 1000, cfg.PageSize)

	_, err = cassorm.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("host: [unterminated"), 0o600))
	_, err = cassorm.LoadConfigFile(bad)
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CASSANDRA_HOST", "10.1.0.1, 10.1.0.2")
	t.Setenv("CASSANDRA_PORT", "9142")
	t.Setenv("CASSANDRA_KEYSPACE", "events")
	t.Setenv("CASSANDRA_CONSISTENCY", "each_quorum")
	t.Setenv("CASSANDRA_REQUEST_TIMEOUT", "0.5")

	cfg, err := cassorm.ConfigFromEnv("CASSANDRA_")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.1.0.1", "10.1.0.2"}, cfg.Hosts)
	assert.Equal(t, 9142, cfg.Port)
	assert.Equal(t, "events", cfg.Keyspace)
	assert.Equal(t, "each_quorum", cfg.Consistency)
	assert.InDelta(t, 0.5, cfg.RequestTimeout, 1e-9)

	t.Setenv("CASSANDRA_PORT", "nine")
	_, err = cassorm.ConfigFromEnv("CASSANDRA_")
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

func TestValidateStrict(t *testing.T) {
	base := cassorm.Config{Keyspace: "app", Strict: true}

	tests := []struct {
		name  string
		apply func(*cassorm.Config)
		field string
	}{
		{"unknown consistency", func(c *cassorm.Config) { c.Consistency = "fastest" }, "consistency"},
		{"partial credentials", func(c *cassorm.Config) { c.Username = "cassandra" }, "username"},
		{"negative page size", func(c *cassorm.Config) { c.PageSize = -1 }, "page_size"},
		{"negative timeout", func(c *cassorm.Config) { c.Timeout = -1 }, "timeout"},
		{"negative connect timeout", func(c *cassorm.Config) { c.ConnectTimeout = -0.5 }, "connect_timeout"},
		{"negative request timeout", func(c *cassorm.Config) { c.RequestTimeout = -0.5 }, "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.apply(&cfg)

			var cfgErr *types.ConfigError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)

			cfg.Strict = false
			assert.NoError(t, cfg.Validate())
		})
	}
}
