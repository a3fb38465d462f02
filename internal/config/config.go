// Package config loads claycmd settings from flags, environment, .env files and an
// optional clay.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"claycmd/pkg/cmdparse"
	"claycmd/pkg/validate"
)

// Keys shared by flags, environment variables (CLAY_ prefix, '-' becomes '_') and the
// config file.
const (
	KeyLogLevel      = "log-level"
	KeyLogFile       = "log-file"
	KeyTestMode      = "test-mode"
	KeyPermission    = "permission"
	KeyMaxExecutions = "max-executions"
	KeyRenderMode    = "render-mode"
	KeyRecords       = "records"
	KeyHistoryFile   = "history-file"
	KeyUser          = "user"
)

// Config holds resolved settings.
type Config struct {
	LogLevel      string
	LogFile       string
	TestMode      bool
	Permission    int
	MaxExecutions int
	RenderMode    cmdparse.RenderMode
	Records       string
	HistoryFile   string
	User          string
}

// NewViper returns a viper instance with defaults, environment binding and the config
// file search path set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyPermission, 0)
	v.SetDefault(KeyMaxExecutions, cmdparse.DefaultMaxExecutions)
	v.SetDefault(KeyRenderMode, "plain")
	v.SetDefault(KeyHistoryFile, "")

	v.SetEnvPrefix("CLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("clay")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/clay")
	return v
}

// LoadDotEnv loads environment variables from .env style files. Missing files are
// ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and resolves the settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates settings without touching the file system.
func FromViper(v *viper.Viper) (*Config, error) {
	level := strings.ToLower(v.GetString(KeyLogLevel))
	if err := validate.OneOf(level, "debug", "info", "warn", "error", "fatal"); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	maxExec := v.GetInt(KeyMaxExecutions)
	if err := validate.AtLeast(maxExec, 1); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyMaxExecutions, err)
	}

	mode, err := cmdparse.ParseRenderMode(v.GetString(KeyRenderMode))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyRenderMode, err)
	}

	return &Config{
		LogLevel:      level,
		LogFile:       v.GetString(KeyLogFile),
		TestMode:      v.GetBool(KeyTestMode),
		Permission:    v.GetInt(KeyPermission),
		MaxExecutions: maxExec,
		RenderMode:    mode,
		Records:       v.GetString(KeyRecords),
		HistoryFile:   v.GetString(KeyHistoryFile),
		User:          v.GetString(KeyUser),
	}, nil
}
