package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Social    SocialConfig    `mapstructure:"social"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	// Timezone decides where "today" and the daily/4-hourly job boundaries fall.
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  int    `mapstructure:"connect_timeout"`
}

// AuthConfig names the headers set by the identity-aware proxy in front of the API.
type AuthConfig struct {
	UserHeader      string `mapstructure:"user_header"`
	EmailHeader     string `mapstructure:"email_header"`
	FirstNameHeader string `mapstructure:"first_name_header"`
	LastNameHeader  string `mapstructure:"last_name_header"`
	ImageHeader     string `mapstructure:"image_header"`
	DevUserID       string `mapstructure:"dev_user_id"`
}

type LLMConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"`
	Model       string `mapstructure:"model"`
}

type SocialConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	APISecret         string `mapstructure:"api_secret"`
	AccessToken       string `mapstructure:"access_token"`
	AccessTokenSecret string `mapstructure:"access_token_secret"`
	Timeout           int    `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	PollInterval    int  `mapstructure:"poll_interval"`
	Concurrency     int  `mapstructure:"concurrency"`
	ShutdownTimeout int  `mapstructure:"shutdown_timeout"`
	LockTTL         int  `mapstructure:"lock_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Token   string   `mapstructure:"token"`
	ChatID  int64    `mapstructure:"chat_id"`
	Actions []string `mapstructure:"actions"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Location resolves the configured timezone, falling back to the process local zone.
func (c ServerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads config.yaml (or $CONFIG_PATH) and applies environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.Timezone != "" {
		if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
			return fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
		}
	}
	if c.Server.Environment == "production" && strings.TrimSpace(c.Auth.DevUserID) != "" {
		return fmt.Errorf("auth.dev_user_id must be empty when server.environment is production")
	}
	if c.Scheduler.Concurrency <= 0 {
		return fmt.Errorf("invalid scheduler.concurrency: %d", c.Scheduler.Concurrency)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid ratelimit.requests_per_minute: %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.token and telegram.chat_id are required when telegram is enabled")
	}
	return nil
}

// bindLegacyEnv keeps the environment variable names used by existing deployments working.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"llm.api_key":                {"LLM_API_KEY", "OPENAI_API_KEY"},
		"social.api_key":             {"SOCIAL_API_KEY", "TWITTER_API_KEY"},
		"social.api_secret":          {"SOCIAL_API_SECRET", "TWITTER_API_SECRET"},
		"social.access_token":        {"SOCIAL_ACCESS_TOKEN", "TWITTER_ACCESS_TOKEN"},
		"social.access_token_secret": {"SOCIAL_ACCESS_TOKEN_SECRET", "TWITTER_ACCESS_TOKEN_SECRET"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.timezone", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "autoposter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.connect_timeout", 60)

	v.SetDefault("auth.user_header", "X-Auth-Request-User")
	v.SetDefault("auth.email_header", "X-Auth-Request-Email")
	v.SetDefault("auth.first_name_header", "X-Auth-Request-First-Name")
	v.SetDefault("auth.last_name_header", "X-Auth-Request-Last-Name")
	v.SetDefault("auth.image_header", "X-Auth-Request-Picture")
	v.SetDefault("auth.dev_user_id", "")

	v.SetDefault("llm.api_endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("llm.model", "gpt-4o")

	v.SetDefault("social.base_url", "https://api.twitter.com")
	v.SetDefault("social.api_key", "")
	v.SetDefault("social.api_secret", "")
	v.SetDefault("social.access_token", "")
	v.SetDefault("social.access_token_secret", "")
	v.SetDefault("social.timeout", 15)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.poll_interval", 60) // every minute
	v.SetDefault("scheduler.concurrency", 1)
	v.SetDefault("scheduler.shutdown_timeout", 30)
	v.SetDefault("scheduler.lock_ttl", 300)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.actions", []string{"tweet_failed", "bot_paused"})

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}
