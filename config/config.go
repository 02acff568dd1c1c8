package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `koanf:"environment"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Storage   StorageConfig   `koanf:"storage"`
	SMTP      SMTPConfig      `koanf:"smtp"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// ClientURL is the frontend base used in verification and reset links.
	ClientURL      string `koanf:"client_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

// Addr returns the host:port the server listens on
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig selects and configures the relational store
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	SQLitePath      string        `koanf:"sqlite_path"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// DSN returns the postgres connection string. URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig configures the optional Redis connection used for rate limiting
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AuthConfig configures token signing and password hashing
type AuthConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	VerificationTTL time.Duration `koanf:"verification_ttl"`
	ResetTTL        time.Duration `koanf:"reset_ttl"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
}

// RateLimitConfig configures the per-client request budget
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// StorageConfig selects where uploaded images are written
type StorageConfig struct {
	Backend    string   `koanf:"backend"`
	UploadDir  string   `koanf:"upload_dir"`
	PublicPath string   `koanf:"public_path"`
	S3         S3Config `koanf:"s3"`
}

// SMTPConfig configures outgoing mail. An empty host logs mail instead of sending it.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
}

// LogConfig configures the zerolog logger
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration every other source is layered on
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8001",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			ClientURL:       "http://localhost:5173",
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "recipeshare",
			SSLMode:         "disable",
			SQLitePath:      "recipeshare.db",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			TokenTTL:        7 * 24 * time.Hour,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
			BcryptCost:      10,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   15 * time.Minute,
		},
		Storage: StorageConfig{
			Backend:    StorageLocal,
			UploadDir:  "uploads",
			PublicPath: "/uploads",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		SMTP: SMTPConfig{
			Port:     "587",
			FromName: "RecipeShare",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig builds the configuration from, in increasing precedence:
// built-in defaults, an optional YAML file, dotenv files, environment
// variables and Docker secrets.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	loadDotEnv()

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := loadSecrets(k); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envMappings maps environment variable names (lower-cased) to config paths
var envMappings = map[string]string{
	"port":                  "server.port",
	"server_port":           "server.port",
	"server_host":           "server.host",
	"cors_origin":           "server.cors_origins",
	"client_url":            "server.client_url",
	"max_upload_bytes":      "server.max_upload_bytes",
	"database_url":          "database.url",
	"db_driver":             "database.driver",
	"db_host":               "database.host",
	"db_port":               "database.port",
	"db_user":               "database.user",
	"db_password":           "database.password",
	"db_name":               "database.name",
	"db_ssl_mode":           "database.ssl_mode",
	"sqlite_path":           "database.sqlite_path",
	"redis_enabled":         "redis.enabled",
	"redis_url":             "redis.url",
	"redis_host":            "redis.host",
	"redis_port":            "redis.port",
	"redis_password":        "redis.password",
	"jwt_secret":            "auth.jwt_secret",
	"jwt_ttl":               "auth.token_ttl",
	"bcrypt_cost":           "auth.bcrypt_cost",
	"rate_limit_enabled":    "rate_limit.enabled",
	"rate_limit_requests":   "rate_limit.requests",
	"rate_limit_window":     "rate_limit.window",
	"storage_backend":       "storage.backend",
	"upload_dir":            "storage.upload_dir",
	"s3_bucket_name":        "storage.s3.bucket",
	"aws_region":            "storage.s3.region",
	"s3_endpoint":           "storage.s3.endpoint",
	"s3_access_key":         "storage.s3.access_key",
	"s3_secret_key":         "storage.s3.secret_key",
	"s3_public_url":         "storage.s3.public_url",
	"s3_use_path_style":     "storage.s3.use_path_style",
	"s3_public_read_policy": "storage.s3.public_read_policy",
	"smtp_host":             "smtp.host",
	"smtp_port":             "smtp.port",
	"smtp_user":             "smtp.username",
	"smtp_pass":             "smtp.password",
	"email_from":            "smtp.from",
	"email_from_name":       "smtp.from_name",
	"log_level":             "log.level",
	"log_format":            "log.format",
}

// envTransformFunc maps an environment variable name to its config path.
// Unmapped variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// secretMappings lists Docker secrets that override sensitive settings
var secretMappings = map[string]string{
	"db_password":    "database.password",
	"jwt_secret":     "auth.jwt_secret",
	"redis_password": "redis.password",
	"smtp_password":  "smtp.password",
	"s3_secret_key":  "storage.s3.secret_key",
}

func loadSecrets(k *koanf.Koanf) error {
	for name, path := range secretMappings {
		if value := readSecret(name); value != "" {
			if err := k.Set(path, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice settings
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
