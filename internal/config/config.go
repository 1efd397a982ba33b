package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API       APIConfig
	UI        UIConfig
	Log       LogConfig
	DevServer DevServerConfig
}

// APIConfig locates the remote game/polls API.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CSRFToken string        `mapstructure:"csrf_token"`
}

// UIConfig picks the app and the route it opens on.
type UIConfig struct {
	App   string `mapstructure:"app"`
	Start string `mapstructure:"start"`
}

// LogConfig controls the structured log file. The terminal belongs to the UI,
// so logs never go to stdout.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// DevServerConfig configures the local fixture API.
type DevServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
}

const (
	AppGame  = "game"
	AppPolls = "polls"
)

// Load reads configuration from file and env. Env var overrides use prefix OELVIEW_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("OELVIEW_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "oelview"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("OELVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	dir := filepath.Join(cacheDir, "oelview")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.csrf_token", "")
	v.SetDefault("ui.app", AppPolls)
	v.SetDefault("ui.start", "/")
	v.SetDefault("log.path", filepath.Join(dir, "oelview.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("devserver.addr", "127.0.0.1:8000")
	v.SetDefault("devserver.db_path", filepath.Join(dir, "devserver.db"))
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch c.UI.App {
	case AppGame, AppPolls:
	default:
		return fmt.Errorf("config: ui.app must be %q or %q, got %q", AppGame, AppPolls, c.UI.App)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("config: log.level must be debug, info or error, got %q", c.Log.Level)
	}
	return nil
}
