package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

type LoggingConfig struct {
	FilePath string `yaml:"file_path"`
	Level    string `yaml:"level"`
	FileMode string `yaml:"filemode"`
	Format   string `yaml:"format"`
}

type ServerConfig struct {
	Port                   int `yaml:"port"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

// DatabaseConfig is read from the environment, not from the config document.
type DatabaseConfig struct {
	Engine          string        `env:"DB_ENGINE,default=mysql"`
	Host            string        `env:"DB_HOST,default=localhost"`
	Port            int           `env:"DB_PORT,default=3306"`
	Username        string        `env:"DB_USERNAME,default=root"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME,default=chats"`
	ConnectRetries  int           `env:"DB_CONNECT_RETRIES,default=10"`
	ConnectInterval time.Duration `env:"DB_CONNECT_INTERVAL,default=2s"`
}

type Config struct {
	AppName               string          `yaml:"app_name"`
	TokenSigningKey       string          `yaml:"token_signing_key"`
	TokenSigningAlgorithm string          `yaml:"token_signing_algorithm"`
	TokenExpireMinutes    *int            `yaml:"token_expire_minutes"`
	FileStoragePath       string          `yaml:"file_storage_path"`
	DefaultProfilePicPath string          `yaml:"default_profile_pic_path"`
	AllowedOrigins        []string        `yaml:"allowed_origins"`
	Logging               LoggingConfig   `yaml:"logging_config"`
	Server                ServerConfig    `yaml:"server"`
	RateLimit             RateLimitConfig `yaml:"rate_limit"`
	Redis                 RedisConfig     `yaml:"redis"`
	Email                 EmailConfig     `yaml:"email"`

	Database DatabaseConfig `yaml:"-"`
}

// TokenTTL is zero when tokens never expire.
func (c *Config) TokenTTL() time.Duration {
	if c.TokenExpireMinutes == nil {
		return 24 * time.Hour
	}
	return time.Duration(*c.TokenExpireMinutes) * time.Minute
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// LoadConfig reads .env (if any), the environment and the document at CONFIG_PATH.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	db, err := LoadDatabase()
	if err != nil {
		return nil, err
	}
	cfg.Database = *db
	return cfg, nil
}

// LoadFile decodes a JSON or YAML config document and applies defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadDatabase() (*DatabaseConfig, error) {
	var db DatabaseConfig
	if err := envdecode.Decode(&db); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode database env: %w", err)
	}
	db.Engine = strings.ToLower(strings.TrimSpace(db.Engine))
	switch db.Engine {
	case EngineMySQL, EnginePostgres, EngineMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_ENGINE %q", db.Engine)
	}
	if db.ConnectRetries <= 0 {
		db.ConnectRetries = 1
	}
	return &db, nil
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "chats"
	}
	if c.TokenSigningAlgorithm == "" {
		c.TokenSigningAlgorithm = "HS256"
	}
	c.TokenSigningAlgorithm = strings.ToUpper(c.TokenSigningAlgorithm)
	if c.Server.Port == 0 {
		c.Server.Port = 80
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.FileMode == "" {
		c.Logging.FileMode = "a"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "chats:messages"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.TokenSigningKey) == "" {
		return errors.New("token_signing_key is required")
	}
	switch c.TokenSigningAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported token_signing_algorithm %q", c.TokenSigningAlgorithm)
	}
	if strings.TrimSpace(c.FileStoragePath) == "" {
		return errors.New("file_storage_path is required")
	}
	if c.TokenExpireMinutes != nil && *c.TokenExpireMinutes < 0 {
		return errors.New("token_expire_minutes must not be negative")
	}
	return nil
}
