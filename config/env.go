package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ConfigPathEnvVar names an explicit YAML config file
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recipeshare/config.yaml",
}

// dotEnvFiles are loaded when present. Existing variables are never overridden.
var dotEnvFiles = []string{
	".env",
	"server.env",
	"../server.env",
}

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch Environment(os.Getenv("ENV")) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether the config was loaded for production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadDotEnv() {
	for _, name := range dotEnvFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		// godotenv.Load keeps variables that are already set
		_ = godotenv.Load(name)
	}
}
