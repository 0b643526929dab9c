package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoPipelines = `pipelines:
  - name: app
    entry_points: [src/index.ts]
    outdir: dist
  - name: ssr
    entry_points: [src/server.ts]
    outfile: dist/server.js
    platform: node
    bundle: false
progress: false
refresh_interval: 50ms
watch:
  debounce: 250ms
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "leapbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "project directory")
	flags.Bool("progress", true, "show progress bars")
	flags.Duration("refresh-interval", DefaultRefreshInterval, "refresh interval")
	flags.Duration("debounce", DefaultDebounce, "watch debounce")
	flags.Bool("clear-screen", true, "clear screen")
	flags.String("output", DefaultOutput, "output format")
	return flags
}

// TestLoadConfig_File tests loading pipelines and settings from a config file.
func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, twoPipelines)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)

	require.Len(t, cfg.Pipelines, 2)
	app, ssr := cfg.Pipelines[0], cfg.Pipelines[1]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, []string{"src/index.ts"}, app.EntryPoints)
	assert.Equal(t, "browser", app.Platform, "defaults are applied")
	assert.True(t, app.BundleEnabled())

	assert.Equal(t, "ssr", ssr.Name)
	assert.Equal(t, "cjs", ssr.Format)
	assert.False(t, ssr.BundleEnabled())

	assert.False(t, cfg.Progress)
	assert.Equal(t, 50*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.ClearScreen, "unset keys keep their defaults")
	assert.NoError(t, cfg.ValidatePipelines())
}

// TestLoadConfig_Defaults tests loading without any config file.
func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", dir))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.True(t, cfg.Progress)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Empty(t, cfg.Pipelines)

	err = cfg.ValidatePipelines()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pipelines configured")
}

// TestLoadConfig_ProjectDirFindsConfig tests that --project-dir locates the config file.
func TestLoadConfig_ProjectDirFindsConfig(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, twoPipelines)

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", filepath.Dir(cfgPath)))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Len(t, cfg.Pipelines, 2)
}

// TestLoadConfig_Precedence tests flags > env vars > config file.
func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		flags     map[string]string
		wantRate  time.Duration
		wantDelay time.Duration
		wantClear bool
	}{
		{
			name:      "file only",
			wantRate:  50 * time.Millisecond,
			wantDelay: 250 * time.Millisecond,
			wantClear: true,
		},
		{
			name:      "env over file",
			env:       map[string]string{"LEAPBUILD_REFRESH_INTERVAL": "75ms", "LEAPBUILD_WATCH__CLEAR_SCREEN": "false"},
			wantRate:  75 * time.Millisecond,
			wantDelay: 250 * time.Millisecond,
			wantClear: false,
		},
		{
			name:      "flag over env",
			env:       map[string]string{"LEAPBUILD_REFRESH_INTERVAL": "75ms", "LEAPBUILD_WATCH__DEBOUNCE": "1s"},
			flags:     map[string]string{"refresh-interval": "120ms", "debounce": "300ms"},
			wantRate:  120 * time.Millisecond,
			wantDelay: 300 * time.Millisecond,
			wantClear: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			cfgPath := writeConfig(t, twoPipelines)
			for key, val := range tt.env {
				t.Setenv(key, val)
			}
			flags := newFlags()
			for name, val := range tt.flags {
				require.NoError(t, flags.Set(name, val))
			}

			cfg, err := LoadConfig(cfgPath, flags)
			require.NoError(t, err)

			assert.Equal(t, tt.wantRate, cfg.RefreshInterval)
			assert.Equal(t, tt.wantDelay, cfg.Watch.Debounce)
			assert.Equal(t, tt.wantClear, cfg.Watch.ClearScreen)
		})
	}
}

// TestLoadConfig_FlagNotSetUsesFile tests that unset flags do not override the file.
func TestLoadConfig_FlagNotSetUsesFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, twoPipelines)

	cfg, err := LoadConfig(cfgPath, newFlags())
	require.NoError(t, err)
	assert.False(t, cfg.Progress, "flag default must not override the file")
}

// TestLoadConfig_Invalid tests configuration errors.
func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(writeConfig(t, "pipelines: [\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("bad output", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(writeConfig(t, "output: xml\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format")
	})

	t.Run("bad duration", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(writeConfig(t, "refresh_interval: soon\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to decode config")
	})
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	valid := Config{OutputFormat: "text", RefreshInterval: time.Second}
	assert.NoError(t, valid.Validate())

	zero := valid
	zero.RefreshInterval = 0
	assert.ErrorContains(t, zero.Validate(), "refresh_interval")

	negative := valid
	negative.Watch.Debounce = -time.Second
	assert.ErrorContains(t, negative.Validate(), "watch.debounce")
}

// TestGetLogger tests the logger context helpers.
func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discard logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
