package config

import (
	"errors"
	"fmt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the loaded configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, ValidationError{"server.port", "is required"})
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, ValidationError{"database.host", "is required for postgres"})
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, ValidationError{"database.sqlite_path", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"database.driver", fmt.Sprintf("unknown driver %q", c.Database.Driver)})
	}

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, ValidationError{"auth.jwt_secret", "is required in production"})
		} else {
			c.Auth.JWTSecret = "devsecret"
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"auth.token_ttl", "must be positive"})
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, ValidationError{"rate_limit", "requests and window must be positive"})
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.UploadDir == "" {
			errs = append(errs, ValidationError{"storage.upload_dir", "is required for local storage"})
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, ValidationError{"storage.s3.bucket", "is required for s3 storage"})
		}
	default:
		errs = append(errs, ValidationError{"storage.backend", fmt.Sprintf("unknown backend %q", c.Storage.Backend)})
	}

	return errors.Join(errs...)
}
