package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "INSIGHT_MODEL", "INSIGHT_LOG_LEVEL", "INSIGHT_ARCHIVE", "INSIGHT_DARK_MODE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini-3-pro-preview", cfg.LLM.PrimaryModel)
	assert.Equal(t, int32(20000), cfg.LLM.PrimaryThinkingBudget)
	assert.Equal(t, "gemini-3-flash-preview", cfg.LLM.FallbackModel)
	assert.Equal(t, 3, cfg.Explore.MaxDepth)
	assert.Equal(t, 250.0, cfg.Layout.Normal.LinkDistance)
	assert.Equal(t, -1000.0, cfg.Layout.Normal.Charge)
	assert.Equal(t, 30, cfg.UI.FPS)

	assert.Equal(t, "3s", cfg.GetMappingDelay().String())
	assert.Equal(t, "2.5s", cfg.GetPrincipleDelay().String())
	assert.Equal(t, "800ms", cfg.GetLoadingTextDelay().String())
	assert.Equal(t, "2.5s", cfg.GetCompressDuration().String())
	assert.Equal(t, "2m0s", cfg.GetLLMTimeout().String())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "k-test"
	cfg.Explore.MaxDepth = 5
	cfg.Layout.Seed = 42
	cfg.Logging.Categories = map[string]bool{"layout": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("explore:\n  mapping_delay: 1s\nui:\n  dark_mode: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1s", cfg.Explore.MappingDelay)
	assert.Equal(t, 3, cfg.Explore.MaxDepth)
	assert.True(t, cfg.UI.DarkMode)
	assert.Equal(t, 30, cfg.UI.FPS)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"depth":    "explore:\n  max_depth: 0\n",
		"duration": "explore:\n  mapping_delay: soon\n",
		"zoom":     "layout:\n  min_zoom: 2\n  max_zoom: 1\n",
		"fps":      "ui:\n  fps: 500\n",
		"level":    "logging:\n  level: loud\n",
		"archive":  "archive:\n  enabled: true\n  path: \"\"\n",
		"yaml":     "explore: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestValidateNamesField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Explore.MaxDepth = 12
	cfg.Explore.PrincipleDelay = "-1s"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Explore.MaxDepth")
	assert.Contains(t, err.Error(), "Explore.PrincipleDelay")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY wins over GOOGLE_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google")
		t.Setenv("GEMINI_API_KEY", "gemini")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini", cfg.LLM.APIKey)
	})

	t.Run("GOOGLE_API_KEY alone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "google", cfg.LLM.APIKey)
	})

	t.Run("model, log level, archive, dark mode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("INSIGHT_MODEL", "gemini-x")
		t.Setenv("INSIGHT_LOG_LEVEL", "DEBUG")
		t.Setenv("INSIGHT_ARCHIVE", "/tmp/h.db")
		t.Setenv("INSIGHT_DARK_MODE", "1")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini-x", cfg.LLM.PrimaryModel)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Archive.Enabled)
		assert.Equal(t, "/tmp/h.db", cfg.Archive.Path)
		assert.True(t, cfg.UI.DarkMode)
	})

	t.Run("overrides apply without a file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "env")
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "env", cfg.LLM.APIKey)
	})
}

func TestStateDir(t *testing.T) {
	assert.Equal(t, "/etc/insight", StateDir("/etc/insight/config.yaml"))
	assert.Equal(t, DefaultDir(), StateDir(""))
}
