package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dshills/mcpizza/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. MCPIZZA_API_BASE_URL
const EnvPrefix = "MCPIZZA"

// Config holds all server configuration
type Config struct {
	API       APIConfig
	MenuCache MenuCacheConfig
	Audit     AuditConfig
	Log       LogConfig
	Profile   Profile
}

// APIConfig configures the commerce gateway
type APIConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration // 0 leaves it to the transport
	MaxRetries int           // lookup attempts; orders are never retried
}

// MenuCacheConfig sizes the per-store menu cache. Size < 0 disables it.
type MenuCacheConfig struct {
	Size int
	TTL  time.Duration
}

// AuditConfig controls the SQLite interaction log
type AuditConfig struct {
	Enabled bool
	DBPath  string
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Profile holds optional customer defaults used by create_order
type Profile struct {
	StoreID   string
	OrderType string
	Name      string
	Email     string
	Phone     string
	Street    string
	City      string
	State     string
	Zip       string
}

// SetDefaults registers every key so env overrides resolve
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://order.dominos.com")
	v.SetDefault("api.user_agent", "MCPizza/1.0")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.max_retries", 3)

	v.SetDefault("menu_cache.size", 32)
	v.SetDefault("menu_cache.ttl", "15m")

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.db_path", defaultAuditPath())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	for _, k := range []string{"store_id", "order_type", "name", "email", "phone", "street", "city", "state", "zip"} {
		v.SetDefault("profile."+k, "")
	}
}

func defaultAuditPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "mcpizza" + string(os.PathSeparator) + "interactions.db"
	}
	return "mcpizza-interactions.db"
}

// LoadDotEnv loads each existing file into the environment. Variables
// already set are left alone; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads defaults, the optional config file and MCPIZZA_* environment
// variables into v and returns the validated result. With an empty
// configFile, mcpizza.{yaml,json,toml} is looked up in the working directory
// and $HOME/.config/mcpizza; its absence is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("mcpizza")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/mcpizza")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:    v.GetString("api.base_url"),
			UserAgent:  v.GetString("api.user_agent"),
			Timeout:    v.GetDuration("api.timeout"),
			MaxRetries: v.GetInt("api.max_retries"),
		},
		MenuCache: MenuCacheConfig{
			Size: v.GetInt("menu_cache.size"),
			TTL:  v.GetDuration("menu_cache.ttl"),
		},
		Audit: AuditConfig{
			Enabled: v.GetBool("audit.enabled"),
			DBPath:  v.GetString("audit.db_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Profile: Profile{
			StoreID:   v.GetString("profile.store_id"),
			OrderType: v.GetString("profile.order_type"),
			Name:      v.GetString("profile.name"),
			Email:     v.GetString("profile.email"),
			Phone:     v.GetString("profile.phone"),
			Street:    v.GetString("profile.street"),
			City:      v.GetString("profile.city"),
			State:     v.GetString("profile.state"),
			Zip:       v.GetString("profile.zip"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects malformed settings
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.MaxRetries < 1 || c.API.MaxRetries > 10 {
		return fmt.Errorf("api.max_retries must be between 1 and 10, got %d", c.API.MaxRetries)
	}
	if c.MenuCache.Size >= 0 && c.MenuCache.TTL <= 0 {
		return fmt.Errorf("menu_cache.ttl must be positive")
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.DBPath) == "" {
		return fmt.Errorf("audit.db_path is required when audit is enabled")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	if strings.EqualFold(c.Log.Output, "stdout") {
		return fmt.Errorf("log.output cannot be stdout: it carries the MCP transport")
	}

	if c.Profile.OrderType != "" {
		if _, err := types.ParseOrderType(c.Profile.OrderType); err != nil {
			return fmt.Errorf("profile.order_type: %w", err)
		}
	}
	return nil
}

// String summarises the configuration with contact details masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{API: %s (timeout %s, retries %d), MenuCache: %d/%s, Audit: %t %s, Log: %s/%s, Profile: %s}",
		c.API.BaseURL, c.API.Timeout, c.API.MaxRetries,
		c.MenuCache.Size, c.MenuCache.TTL,
		c.Audit.Enabled, c.Audit.DBPath,
		c.Log.Level, c.Log.Format,
		c.Profile.String())
}

// String masks everything but the name and store
func (p Profile) String() string {
	if p.IsEmpty() {
		return "none"
	}
	return fmt.Sprintf("%s @ store %s (contact *** masked ***)", p.Name, p.StoreID)
}

// IsEmpty reports whether no profile field is set
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// Customer returns the profile's customer fields
func (p Profile) Customer() types.Customer {
	return types.Customer{Name: p.Name, Email: p.Email, Phone: p.Phone}
}

// Address returns the profile's address fields
func (p Profile) Address() types.Address {
	return types.Address{Street: p.Street, City: p.City, Region: p.State, PostalCode: p.Zip}
}
