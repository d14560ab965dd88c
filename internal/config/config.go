package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ProgressBackendYAML     = "yaml"
	ProgressBackendDatabase = "database"

	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Cards       CardsConfig       `mapstructure:"cards"`
	Progress    ProgressConfig    `mapstructure:"progress"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Translation TranslationConfig `mapstructure:"translation"`
	Server      ServerConfig      `mapstructure:"server"`
	Reminder    ReminderConfig    `mapstructure:"reminder"`
	Outputs     OutputsConfig     `mapstructure:"outputs"`
}

type CardsConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
	GitURL    string `mapstructure:"git_url"`
	GitBranch string `mapstructure:"git_branch"`
}

type ProgressConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=yaml database"`
	YAMLFile string `mapstructure:"yaml_file" validate:"required_if=Backend yaml"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=sqlite mysql postgres"`
	Path            string            `mapstructure:"path"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	AutoMigrate     bool              `mapstructure:"auto_migrate"`
}

type TranslationConfig struct {
	BaseURL          string `mapstructure:"base_url" validate:"required,url"`
	TargetLanguage   string `mapstructure:"target_language" validate:"required"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	// CacheDirectory keeps translated text on disk. Empty disables the cache.
	CacheDirectory string `mapstructure:"cache_directory"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ReminderConfig struct {
	// Schedule is a cron expression. An empty schedule disables the reminder.
	Schedule string `mapstructure:"schedule" validate:"omitempty,cron"`
}

type OutputsConfig struct {
	PDFDirectory string `mapstructure:"pdf_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/learncards")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("cards.directory", "cards")
	v.SetDefault("cards.git_branch", "main")
	v.SetDefault("progress.backend", ProgressBackendYAML)
	v.SetDefault("progress.yaml_file", filepath.Join("progress", "card_progress.yml"))
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", filepath.Join("progress", "learncards.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "learncards")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("translation.base_url", "https://translate.googleapis.com")
	v.SetDefault("translation.target_language", "zh-CN")
	v.SetDefault("translation.max_retry_attempts", 2)
	v.SetDefault("translation.timeout_seconds", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("reminder.schedule", "")
	v.SetDefault("outputs.pdf_directory", filepath.Join("outputs", "pdf"))

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("translation.base_url", "LEARNCARDS_TRANSLATION_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind LEARNCARDS_TRANSLATION_BASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
