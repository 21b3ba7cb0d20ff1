package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"economic/logging"

	"github.com/spf13/viper"
)

// DefaultConfigYAML is the embedded default configuration.
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Email     EmailConfig     `mapstructure:"email"`
	AI        AIConfig        `mapstructure:"ai"`
	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// ServerConfig REST backend server settings
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig MySQL connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig token signing settings
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig SMTP settings for outgoing mail
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AIConfig OpenAI compatible chat completion endpoint
type AIConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	SystemPrompt   string        `mapstructure:"system_prompt"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DashboardConfig web dashboard / CLI client settings
type DashboardConfig struct {
	Port         string        `mapstructure:"port"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	PublicURL    string        `mapstructure:"public_url"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieDays   int           `mapstructure:"cookie_days"`
	PollSeconds  int           `mapstructure:"poll_seconds"`
	PageSize     int           `mapstructure:"page_size"`
	PollInterval time.Duration `mapstructure:"-"`
}

var (
	// GlobalConfig is set by LoadConfig.
	GlobalConfig *Config
)

// LoadConfig loads the configuration.
// Precedence: environment > external file > embedded defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}
	log := logging.Get()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Warnf("cannot read config file %s: %v", configPath, err)
		} else {
			log.Infof("merged config file: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/economic")
		externalViper.AddConfigPath("$HOME/.economic")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Warnf("merge external config: %v", err)
			} else {
				log.Infof("merged config file: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	v.SetEnvPrefix("ECONOMIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()

	GlobalConfig = &cfg
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 24
	}
	c.JWT.ExpireTime = time.Duration(c.JWT.ExpireHours) * time.Hour

	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 60
	}
	c.AI.Timeout = time.Duration(c.AI.TimeoutSeconds) * time.Second

	if c.Dashboard.CookieName == "" {
		c.Dashboard.CookieName = "jwt-token"
	}
	if c.Dashboard.CookieDays <= 0 {
		c.Dashboard.CookieDays = 7
	}
	if c.Dashboard.PageSize <= 0 {
		c.Dashboard.PageSize = 10
	}
	if c.Dashboard.PollSeconds <= 0 {
		c.Dashboard.PollSeconds = 60
	}
	c.Dashboard.PollInterval = time.Duration(c.Dashboard.PollSeconds) * time.Second
}

// MustLoadConfig is LoadConfig that panics on error.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("config not initialised, call LoadConfig first")
	}
	return GlobalConfig
}

// IsRelease reports whether the server runs in gin release mode.
func IsRelease() bool {
	return GlobalConfig != nil && GlobalConfig.Server.Mode == "release"
}

// SafeErrorMessage hides internal error details from clients in release mode.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if IsRelease() {
		return fallback
	}
	return err.Error()
}

// PrintConfig logs the active configuration without secrets.
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log := logging.Get()
	log.Info("current config:")
	log.Infof("  server:    %s (mode: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	log.Infof("  database:  %s@%s:%s/%s",
		GlobalConfig.Database.Username,
		GlobalConfig.Database.Host,
		GlobalConfig.Database.Port,
		GlobalConfig.Database.DBName)
	log.Infof("  email:     %v", GlobalConfig.Email.Enabled)
	log.Infof("  ai:        %v (%s)", GlobalConfig.AI.Enabled, GlobalConfig.AI.Model)
	log.Infof("  dashboard: %s -> %s", GlobalConfig.Dashboard.Port, GlobalConfig.Dashboard.APIBaseURL)
}
