// Package config loads remcalc defaults from a yaml file, REMCALC_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"remcalc/internal/sleepcycle"
)

const (
	envPrefix  = "REMCALC"
	configName = "remcalc"
)

// FortuneConfig controls the decorative fortune fetch.
type FortuneConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	PrimaryURL string        `mapstructure:"primary_url"`
	ProxyURL   string        `mapstructure:"proxy_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Fallback   string        `mapstructure:"fallback"`
}

type WebConfig struct {
	RatePerMinute int `mapstructure:"rate_per_minute"`
	Burst         int `mapstructure:"burst"`
}

// Config holds all configuration values.
type Config struct {
	Latency            float64 `mapstructure:"latency"`
	MinSleep           float64 `mapstructure:"min_sleep"`
	ShortcutName       string  `mapstructure:"shortcut_name"`
	ShortcutInstallURL string  `mapstructure:"shortcut_install_url"`
	Port               int     `mapstructure:"port"`
	Env                string  `mapstructure:"env"`
	LogLevel           string  `mapstructure:"log_level"`

	Fortune FortuneConfig `mapstructure:"fortune"`
	Web     WebConfig     `mapstructure:"web"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("latency", 15)
	v.SetDefault("min_sleep", 6)
	v.SetDefault("shortcut_name", sleepcycle.DefaultShortcutName)
	v.SetDefault("shortcut_install_url", "https://www.icloud.com/shortcuts/c03903c8fe4746a8aa17ec99340fa663")
	v.SetDefault("port", 0)
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("fortune.enabled", true)
	v.SetDefault("fortune.primary_url", "https://api.viewbits.com/v1/fortunecookie?mode=random")
	v.SetDefault("fortune.proxy_url", "https://api.allorigins.win/get?url=")
	v.SetDefault("fortune.timeout", 6*time.Second)
	v.SetDefault("fortune.fallback", "One that would have the fruit must climb the tree.")

	v.SetDefault("web.rate_per_minute", 120)
	v.SetDefault("web.burst", 20)
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads configuration. An empty path searches the working directory and
// the user config directory; a missing file there is not an error. Flags that
// were explicitly set on the command line win over file and environment.
func Load(path string, flags map[string]*pflag.Flag) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, f := range flags {
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Dir returns the XDG config directory for remcalc.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, configName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", configName)
}

// Validate returns the first invalid setting.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.Latency) || math.IsInf(c.Latency, 0) || c.Latency < 0:
		return fmt.Errorf("latency must be >= 0 (minutes), got %v", c.Latency)
	case math.IsNaN(c.MinSleep) || c.MinSleep < 0 || c.MinSleep > 24:
		return fmt.Errorf("min_sleep must be between 0 and 24 hours, got %v", c.MinSleep)
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	case strings.TrimSpace(c.ShortcutName) == "":
		return fmt.Errorf("shortcut_name must not be empty")
	case c.Fortune.Timeout <= 0:
		return fmt.Errorf("fortune.timeout must be > 0, got %s", c.Fortune.Timeout)
	case c.Web.RatePerMinute <= 0:
		return fmt.Errorf("web.rate_per_minute must be > 0, got %d", c.Web.RatePerMinute)
	case c.Web.Burst <= 0:
		return fmt.Errorf("web.burst must be > 0, got %d", c.Web.Burst)
	}
	return nil
}

// IsProduction reports whether the production logger should be used.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
