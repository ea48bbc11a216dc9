package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "echoverse"
	defaultDBCharset  = "utf8mb4"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379

	defaultSessionTTLHours = 24
	defaultSanitizeMaxLen  = 5000
	defaultSecurityLogPath = "logs/security.log"
)

// defaultRateLimits is the per-endpoint request cap table for the trailing
// 60-second window. The empty key is the fallback for unlisted endpoints.
var defaultRateLimits = map[string]int{
	"/api/auth/login":    10,
	"/api/auth/register": 5,
	"/api/messages":      100,
	"":                   200,
}

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port            int                   `yaml:"port"`
	Env             string                `yaml:"env"` // "development" | "production"
	Database        DatabaseRuntimeConfig `yaml:"database"`
	Redis           RedisRuntimeConfig    `yaml:"redis"`
	AllowedOrigins  []string              `yaml:"allowed_origins"`
	MessageKey      string                `yaml:"message_key"` // 64 hex chars (32 bytes) enables at-rest DM encryption
	SessionTTLHours int                   `yaml:"session_ttl_hours"`
	SanitizeMaxLen  int                   `yaml:"sanitize_max_len"`
	RateLimits      map[string]int        `yaml:"rate_limits"`
	SecurityLogPath string                `yaml:"security_log"`

	// Derived, not read from YAML.
	DSN      string `yaml:"-"`
	RedisURL string `yaml:"-"`
}

type DatabaseRuntimeConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	normalize(&cfg)
	if err := validate(&cfg, path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		SessionTTLHours: defaultSessionTTLHours,
		SanitizeMaxLen:  defaultSanitizeMaxLen,
		SecurityLogPath: defaultSecurityLogPath,
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	cfg.MessageKey = strings.TrimSpace(cfg.MessageKey)
	cfg.SecurityLogPath = strings.TrimSpace(cfg.SecurityLogPath)
	if cfg.SecurityLogPath == "" {
		cfg.SecurityLogPath = defaultSecurityLogPath
	}
	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = defaultSessionTTLHours
	}
	if cfg.SanitizeMaxLen <= 0 {
		cfg.SanitizeMaxLen = defaultSanitizeMaxLen
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	limits := make(map[string]int, len(defaultRateLimits)+len(cfg.RateLimits))
	for endpoint, limit := range defaultRateLimits {
		limits[endpoint] = limit
	}
	for endpoint, limit := range cfg.RateLimits {
		endpoint = strings.TrimSpace(endpoint)
		if limit > 0 {
			limits[endpoint] = limit
		}
	}
	cfg.RateLimits = limits

	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
}

func validate(cfg *AppConfig, path string) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.MessageKey != "" {
		key, err := hex.DecodeString(cfg.MessageKey)
		if err != nil {
			return fmt.Errorf("message_key in %q is not valid hex: %w", path, err)
		}
		if len(key) != 32 {
			return fmt.Errorf("message_key in %q must decode to 32 bytes, got %d", path, len(key))
		}
	}
	return nil
}

func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	params := neturl.Values{}
	params.Set("charset", c.Charset)
	params.Set("parseTime", "true")
	params.Set("loc", "Local")

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		c.User, c.Password,
		net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		c.Name, params.Encode())
}

func (c RedisRuntimeConfig) URLValue() string {
	if v := strings.TrimSpace(c.URL); v != "" {
		if strings.HasPrefix(v, "redis://") || strings.HasPrefix(v, "rediss://") {
			return v
		}
		return "redis://" + v
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}
	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Username != "" {
		u.User = neturl.UserPassword(c.Username, c.Password)
	} else if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// SessionTTL returns the configured session lifetime.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// MessageKeyBytes decodes the configured encryption key, or nil when at-rest
// encryption is disabled. Validity is checked at load time.
func (c *AppConfig) MessageKeyBytes() []byte {
	if c.MessageKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.MessageKey)
	if err != nil || len(key) != 32 {
		return nil
	}
	return key
}
