package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int      `env:"TEST_CFG_PORT" envDefault:"8012"`
	Engine   string   `env:"TEST_CFG_ENGINE" envDefault:"memory"`
	Brokers  []string `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Verified bool     `env:"TEST_CFG_VERIFIED" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8012, cfg.Port)
	assert.Equal(t, "memory", cfg.Engine)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.False(t, cfg.Verified)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_ENGINE", "elasticsearch")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_VERIFIED", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "elasticsearch", cfg.Engine)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.True(t, cfg.Verified)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_ENGINE=elasticsearch\nTEST_CFG_DOTENV_ONLY=yes\n"), 0o600))
	t.Setenv("TEST_CFG_ENGINE", "memory")
	t.Cleanup(func() { _ = os.Unsetenv("TEST_CFG_DOTENV_ONLY") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "memory", os.Getenv("TEST_CFG_ENGINE"))
	assert.Equal(t, "yes", os.Getenv("TEST_CFG_DOTENV_ONLY"))
}
