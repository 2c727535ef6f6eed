package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15.0, cfg.Latency)
	assert.Equal(t, 6.0, cfg.MinSleep)
	assert.Equal(t, "remcalc", cfg.ShortcutName)
	assert.Contains(t, cfg.ShortcutInstallURL, "https://www.icloud.com/shortcuts/")
	assert.Equal(t, 0, cfg.Port)
	assert.True(t, cfg.Fortune.Enabled)
	assert.Equal(t, 6*time.Second, cfg.Fortune.Timeout)
	assert.Equal(t, "One that would have the fruit must climb the tree.", cfg.Fortune.Fallback)
	assert.Equal(t, 120, cfg.Web.RatePerMinute)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remcalc.yaml")
	content := `
latency: 5
min_sleep: 7.5
shortcut_name: Wake
env: production
fortune:
  enabled: false
  timeout: 2s
web:
  burst: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Latency)
	assert.Equal(t, 7.5, cfg.MinSleep)
	assert.Equal(t, "Wake", cfg.ShortcutName)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Fortune.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Fortune.Timeout)
	assert.Equal(t, 3, cfg.Web.Burst)
	// untouched keys keep their defaults
	assert.Equal(t, 120, cfg.Web.RatePerMinute)
	assert.Equal(t, "https://api.allorigins.win/get?url=", cfg.Fortune.ProxyURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_SearchPathWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_SearchPathFindsXDGFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	chdir(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "remcalc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "remcalc", "remcalc.yaml"), []byte("latency: 30\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Latency)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latency: 5\nfortune:\n  timeout: 2s\n"), 0o644))
	t.Setenv("REMCALC_LATENCY", "30")
	t.Setenv("REMCALC_FORTUNE_TIMEOUT", "750ms")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Latency)
	assert.Equal(t, 750*time.Millisecond, cfg.Fortune.Timeout)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latency: 5\nmin_sleep: 8\n"), 0o644))
	t.Setenv("REMCALC_LATENCY", "30")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("latency", 15, "")
	fs.Float64("min-sleep", 6, "")
	require.NoError(t, fs.Parse([]string{"--latency", "0"}))

	cfg, err := Load(path, map[string]*pflag.Flag{
		"latency":   fs.Lookup("latency"),
		"min_sleep": fs.Lookup("min-sleep"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Latency)
	// unchanged flag does not shadow the file
	assert.Equal(t, 8.0, cfg.MinSleep)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative latency", func(c *Config) { c.Latency = -1 }},
		{"NaN latency", func(c *Config) { c.Latency = math.NaN() }},
		{"infinite latency", func(c *Config) { c.Latency = math.Inf(1) }},
		{"NaN min sleep", func(c *Config) { c.MinSleep = math.NaN() }},
		{"min sleep too large", func(c *Config) { c.MinSleep = 25 }},
		{"negative min sleep", func(c *Config) { c.MinSleep = -0.5 }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"empty shortcut", func(c *Config) { c.ShortcutName = "  " }},
		{"zero fortune timeout", func(c *Config) { c.Fortune.Timeout = 0 }},
		{"zero rate", func(c *Config) { c.Web.RatePerMinute = 0 }},
		{"zero burst", func(c *Config) { c.Web.Burst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir changes the working directory for the test and restores it on
// cleanup; equivalent to testing.T.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
