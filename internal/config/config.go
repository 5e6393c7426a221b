// Package config resolves run settings from an optional .env file, the
// process environment and command-line overrides, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/oukeidos/promptaudit/internal/apperrors"
)

const DefaultEnvFile = ".env"

type Config struct {
	Project  string `env:"VERTEX_PROJECT_ID"`
	Location string `env:"VERTEX_LOCATION" envDefault:"us-central1"`
	Model    string `env:"VERTEX_MODEL_ID" envDefault:"gemini-1.5-flash-002"`

	Dataset  string `env:"BQ_DATASET_ID" envDefault:"gemini_audit"`
	Table    string `env:"BQ_TABLE_ID" envDefault:"prompt_audit"`
	SpoolDir string `env:"AUDIT_SPOOL_DIR"`

	AuditLog AuditLog
}

// AuditLog configures the rotating text log written by the file mode.
type AuditLog struct {
	Path       string `env:"AUDIT_LOG_FILE" envDefault:"gemini_api_log.log"`
	MaxSizeMB  int    `env:"AUDIT_LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"AUDIT_LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"AUDIT_LOG_MAX_AGE_DAYS" envDefault:"30"`
	Compress   bool   `env:"AUDIT_LOG_COMPRESS" envDefault:"false"`
}

var environ = os.Environ

// Load reads envFile (skipped when empty; a missing file is only an error
// when mustExist is set), overlays the process environment and parses the
// result. Values already set in the process environment win over the file.
func Load(envFile string, mustExist bool) (*Config, error) {
	vars, err := readEnvFile(envFile, mustExist)
	if err != nil {
		return nil, err
	}
	for _, kv := range environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return parse(vars)
}

func readEnvFile(path string, mustExist bool) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) && !mustExist {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, apperrors.Config(fmt.Sprintf("Failed to read env file %s.", path), err)
	}
	return vars, nil
}

func parse(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		var parseErr env.ParseError
		if errors.As(err, &parseErr) {
			return nil, apperrors.Config(fmt.Sprintf("Invalid value for %s.", envKeyFor(parseErr.Name)), err)
		}
		return nil, apperrors.Config("Invalid environment configuration.", err)
	}
	return cfg, nil
}

// Validate checks the settings every run mode needs.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Project) == "":
		return apperrors.Config("VERTEX_PROJECT_ID is not set (or pass --project).", nil)
	case strings.TrimSpace(c.Location) == "":
		return apperrors.Config("VERTEX_LOCATION must not be empty.", nil)
	case strings.TrimSpace(c.Model) == "":
		return apperrors.Config("VERTEX_MODEL_ID must not be empty.", nil)
	}
	return nil
}

// ValidateWarehouse checks the settings the bq mode needs on top of Validate.
func (c *Config) ValidateWarehouse() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Dataset) == "" {
		return apperrors.Config("BQ_DATASET_ID must not be empty.", nil)
	}
	if strings.TrimSpace(c.Table) == "" {
		return apperrors.Config("BQ_TABLE_ID must not be empty.", nil)
	}
	return nil
}

// ValidateAuditLog checks the settings the file mode needs on top of Validate.
func (c *Config) ValidateAuditLog() error {
	if err := c.Validate(); err != nil {
		return err
	}
	l := c.AuditLog
	switch {
	case strings.TrimSpace(l.Path) == "":
		return apperrors.Config("AUDIT_LOG_FILE must not be empty.", nil)
	case l.MaxSizeMB <= 0:
		return apperrors.Config("AUDIT_LOG_MAX_SIZE_MB must be positive.", nil)
	case l.MaxBackups < 0:
		return apperrors.Config("AUDIT_LOG_MAX_BACKUPS must not be negative.", nil)
	case l.MaxAgeDays < 0:
		return apperrors.Config("AUDIT_LOG_MAX_AGE_DAYS must not be negative.", nil)
	}
	return nil
}

// TableRef is the fully qualified warehouse table name.
func (c *Config) TableRef() string {
	return c.Project + "." + c.Dataset + "." + c.Table
}

// envKeyFor maps a struct field name back to its variable name so errors
// name what the user actually set.
func envKeyFor(field string) string {
	for _, t := range []reflect.Type{reflect.TypeOf(Config{}), reflect.TypeOf(AuditLog{})} {
		if f, ok := t.FieldByName(field); ok {
			if key, _, _ := strings.Cut(f.Tag.Get("env"), ","); key != "" {
				return key
			}
		}
	}
	return field
}
