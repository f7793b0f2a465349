package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port string
	Env  string
	Host string
}

type StoreConfig struct {
	Backend   string
	RecordTTL time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	WritesPerMin int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MonitoringConfig struct {
	LogLevel string
}

// DefaultAllowedOrigins are the browser origins the hosted clients run from.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://cnielsen.github.io",
	"https://tinclon.github.io",
}

// Load reads the coordinate server configuration.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
			RecordTTL: time.Duration(getEnvAsInt("RECORD_TTL_SECONDS", 0)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			WritesPerMin: getEnvAsInt("RATE_LIMIT_WRITES_PER_MIN", 120),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		},
		Monitoring: MonitoringConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}

	if config.Store.Backend != BackendMemory && config.Store.Backend != BackendRedis {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", config.Store.Backend)
	}

	return config, nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// TrackerConfig configures the terminal client.
type TrackerConfig struct {
	ServerURL      string
	Role           string
	PrefsPath      string
	PushInterval   time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	HighlightTTL   time.Duration
	ReadOnly       bool
	Viewer         bool
	Env            string
	LogLevel       string

	// FixFile, when set, replaces manual fix commands. With FixPollInterval
	// the last fix in the file is re-read on every tick; without it the file
	// is replayed once, line by line.
	FixFile         string
	FixPollInterval time.Duration
}

func LoadTracker() (*TrackerConfig, error) {
	_ = godotenv.Load()

	config := &TrackerConfig{
		ServerURL:      strings.TrimRight(getEnv("TRACKER_SERVER_URL", "http://localhost:3000"), "/"),
		Role:           getEnv("TRACKER_ROLE", ""),
		PrefsPath:      getEnv("TRACKER_PREFS_PATH", ".geohunt"),
		PushInterval:   getEnvAsDuration("TRACKER_PUSH_INTERVAL", 5*time.Second),
		PollInterval:   getEnvAsDuration("TRACKER_POLL_INTERVAL", 5*time.Second),
		RequestTimeout: getEnvAsDuration("TRACKER_REQUEST_TIMEOUT", 5*time.Second),
		HighlightTTL:   getEnvAsDuration("TRACKER_HIGHLIGHT_TTL", 400*time.Millisecond),
		ReadOnly:       getEnvAsBool("TRACKER_READ_ONLY", false),
		Viewer:         getEnvAsBool("TRACKER_VIEWER", false),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "warn"),

		FixFile:         getEnv("TRACKER_FIX_FILE", ""),
		FixPollInterval: getEnvAsDuration("TRACKER_FIX_POLL_INTERVAL", 0),
	}

	if config.PushInterval <= 0 || config.PollInterval <= 0 || config.RequestTimeout <= 0 {
		return nil, fmt.Errorf("tracker intervals must be positive")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("5s", "400ms").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
