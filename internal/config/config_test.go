package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcpizza/pkg/types"
)

// chdir isolates the config file search from the developer's machine
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://order.dominos.com", cfg.API.BaseURL)
	assert.Equal(t, "MCPizza/1.0", cfg.API.UserAgent)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 32, cfg.MenuCache.Size)
	assert.Equal(t, 15*time.Minute, cfg.MenuCache.TTL)
	assert.True(t, cfg.Audit.Enabled)
	assert.NotEmpty(t, cfg.Audit.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.True(t, cfg.Profile.IsEmpty())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("MCPIZZA_API_BASE_URL", "http://localhost:9999")
	t.Setenv("MCPIZZA_API_TIMEOUT", "30s")
	t.Setenv("MCPIZZA_LOG_LEVEL", "debug")
	t.Setenv("MCPIZZA_AUDIT_ENABLED", "false")
	t.Setenv("MCPIZZA_PROFILE_NAME", "John Doe")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "John Doe", cfg.Profile.Name)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  max_retries: 5
menu_cache:
  size: -1
log:
  format: json
profile:
  store_id: "8022"
  order_type: carryout
  name: Jane Roe
  email: jane@example.com
  phone: "5555550000"
  street: 1 Elm St
  city: Austin
  state: TX
  zip: "73301"
`), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, -1, cfg.MenuCache.Size)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "8022", cfg.Profile.StoreID)
	assert.Equal(t, types.Customer{Name: "Jane Roe", Email: "jane@example.com", Phone: "5555550000"}, cfg.Profile.Customer())
	assert.Equal(t, types.Address{Street: "1 Elm St", City: "Austin", Region: "TX", PostalCode: "73301"}, cfg.Profile.Address())
}

func TestLoad_DiscoversConfigInWorkingDir(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mcpizza.yaml"), []byte("log:\n  level: warn\n"), 0644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := chdir(t)
	_, err := Load(viper.New(), filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MCPIZZA_PROFILE_STORE_ID=4336\n"), 0644))
	t.Setenv("MCPIZZA_PROFILE_STORE_ID", "")
	require.NoError(t, os.Unsetenv("MCPIZZA_PROFILE_STORE_ID"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "4336", cfg.Profile.StoreID)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:       APIConfig{BaseURL: "https://order.dominos.com", MaxRetries: 3},
			MenuCache: MenuCacheConfig{Size: 10, TTL: time.Minute},
			Audit:     AuditConfig{Enabled: true, DBPath: "x.db"},
			Log:       LogConfig{Level: "info", Format: "text", Output: "stderr"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"RelativeURL", func(c *Config) { c.API.BaseURL = "order.dominos.com" }},
		{"NegativeTimeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"ZeroRetries", func(c *Config) { c.API.MaxRetries = 0 }},
		{"TooManyRetries", func(c *Config) { c.API.MaxRetries = 11 }},
		{"CacheWithoutTTL", func(c *Config) { c.MenuCache.TTL = 0 }},
		{"AuditWithoutPath", func(c *Config) { c.Audit.DBPath = " " }},
		{"BadLevel", func(c *Config) { c.Log.Level = "loud" }},
		{"BadFormat", func(c *Config) { c.Log.Format = "xml" }},
		{"StdoutOutput", func(c *Config) { c.Log.Output = "STDOUT" }},
		{"BadProfileOrderType", func(c *Config) { c.Profile.OrderType = "drone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestString_MasksContact(t *testing.T) {
	c := &Config{
		API:     APIConfig{BaseURL: "https://order.dominos.com", MaxRetries: 3},
		Profile: Profile{Name: "Jane Roe", Email: "jane@example.com", Phone: "5555550000", StoreID: "8022"},
	}
	s := c.String()
	assert.Contains(t, s, "Jane Roe")
	assert.NotContains(t, s, "jane@example.com")
	assert.NotContains(t, s, "5555550000")
}
