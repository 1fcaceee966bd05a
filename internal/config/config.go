package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all insightvector configuration.
type Config struct {
	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Stage machine timings
	Explore ExploreConfig `yaml:"explore"`

	// Force layout tuning
	Layout LayoutConfig `yaml:"layout"`

	// SQLite history of fetched insights
	Archive ArchiveConfig `yaml:"archive"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini provider chain.
type LLMConfig struct {
	APIKey                 string `yaml:"api_key,omitempty"`
	PrimaryModel           string `yaml:"primary_model" validate:"required"`
	PrimaryThinkingBudget  int32  `yaml:"primary_thinking_budget" validate:"gte=0"`
	FallbackModel          string `yaml:"fallback_model"`
	FallbackThinkingBudget int32  `yaml:"fallback_thinking_budget" validate:"gte=0"`
	Timeout                string `yaml:"timeout" validate:"duration"`
	SyntheticFallback      bool   `yaml:"synthetic_fallback"`
}

// ExploreConfig configures the exploration controller.
type ExploreConfig struct {
	MaxDepth         int    `yaml:"max_depth" validate:"min=1,max=9"`
	MappingDelay     string `yaml:"mapping_delay" validate:"duration"`
	PrincipleDelay   string `yaml:"principle_delay" validate:"duration"`
	LoadingTextDelay string `yaml:"loading_text_delay" validate:"duration"`
}

// ForceTuning is one mode's force constants.
type ForceTuning struct {
	LinkDistance  float64 `yaml:"link_distance" validate:"gte=0"`
	Charge        float64 `yaml:"charge"`
	CollideRadius float64 `yaml:"collide_radius" validate:"gte=0"`
}

// LayoutConfig configures the force layout engine.
type LayoutConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`

	Normal   ForceTuning `yaml:"normal"`
	Compress ForceTuning `yaml:"compress"`

	RecompressLinkDistance float64 `yaml:"recompress_link_distance" validate:"gte=0"`
	RecompressCharge       float64 `yaml:"recompress_charge"`
	RecompressAlpha        float64 `yaml:"recompress_alpha" validate:"gt=0,lte=1"`
	CompressDuration       string  `yaml:"compress_duration" validate:"duration"`

	MinZoom float64 `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom float64 `yaml:"max_zoom" validate:"gtfield=MinZoom"`

	DragAlphaTarget float64 `yaml:"drag_alpha_target" validate:"gte=0,lte=1"`
	VelocityDecay   float64 `yaml:"velocity_decay" validate:"gte=0,lte=1"`
	AlphaMin        float64 `yaml:"alpha_min" validate:"gte=0,lt=1"`
	AlphaDecay      float64 `yaml:"alpha_decay" validate:"gte=0,lt=1"` // 0 derives from alpha_min over 300 steps
	Stars           int     `yaml:"stars" validate:"gte=0"`
	Seed            int64   `yaml:"seed"`
}

// ArchiveConfig configures the SQLite history.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// UIConfig configures the terminal explorer.
type UIConfig struct {
	DarkMode bool `yaml:"dark_mode"`
	FPS      int  `yaml:"fps" validate:"min=1,max=120"`
	Mouse    bool `yaml:"mouse"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string          `yaml:"format" validate:"omitempty,oneof=json console"`
	DebugMode  bool            `yaml:"debug_mode"` // Master toggle - false = no log files
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultDir is the per-user state directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".insightvector"
	}
	return filepath.Join(home, ".insightvector")
}

// DefaultPath is where the config file lives unless --config says otherwise.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			PrimaryModel:           "gemini-3-pro-preview",
			PrimaryThinkingBudget:  20000,
			FallbackModel:          "gemini-3-flash-preview",
			FallbackThinkingBudget: 0,
			Timeout:                "120s",
			SyntheticFallback:      true,
		},

		Explore: ExploreConfig{
			MaxDepth:         3,
			MappingDelay:     "3s",
			PrincipleDelay:   "2.5s",
			LoadingTextDelay: "800ms",
		},

		Layout: LayoutConfig{
			Width:                  960,
			Height:                 640,
			Normal:                 ForceTuning{LinkDistance: 250, Charge: -1000, CollideRadius: 100},
			Compress:               ForceTuning{LinkDistance: 10, Charge: -5, CollideRadius: 0},
			RecompressLinkDistance: 0,
			RecompressCharge:       -2,
			RecompressAlpha:        0.5,
			CompressDuration:       "2.5s",
			MinZoom:                0.1,
			MaxZoom:                8,
			DragAlphaTarget:        0.3,
			VelocityDecay:          0.4,
			AlphaMin:               0.001,
			Stars:                  100,
			Seed:                   1,
		},

		Archive: ArchiveConfig{
			Enabled: false,
			Path:    filepath.Join(DefaultDir(), "history.db"),
		},

		UI: UIConfig{
			FPS:   30,
			Mouse: true,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over GOOGLE_API_KEY
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("INSIGHT_MODEL"); model != "" {
		c.LLM.PrimaryModel = model
	}
	if level := os.Getenv("INSIGHT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if path := os.Getenv("INSIGHT_ARCHIVE"); path != "" {
		c.Archive.Path = path
		c.Archive.Enabled = true
	}
	if v := os.Getenv("INSIGHT_DARK_MODE"); v == "1" || strings.EqualFold(v, "true") {
		c.UI.DarkMode = true
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// GetLLMTimeout returns the per-request LLM timeout.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 120*time.Second)
}

// GetMappingDelay returns how long the root map shows before compressing.
func (c *Config) GetMappingDelay() time.Duration {
	return parseDuration(c.Explore.MappingDelay, 3*time.Second)
}

// GetPrincipleDelay returns how long the first principle shows.
func (c *Config) GetPrincipleDelay() time.Duration {
	return parseDuration(c.Explore.PrincipleDelay, 2500*time.Millisecond)
}

// GetLoadingTextDelay returns when the loading text switches.
func (c *Config) GetLoadingTextDelay() time.Duration {
	return parseDuration(c.Explore.LoadingTextDelay, 800*time.Millisecond)
}

// GetCompressDuration returns the compression deadline.
func (c *Config) GetCompressDuration() time.Duration {
	return parseDuration(c.Layout.CompressDuration, 2500*time.Millisecond)
}

// StateDir is where logs live: the directory holding the config file.
func StateDir(configPath string) string {
	if configPath == "" {
		return DefaultDir()
	}
	return filepath.Dir(configPath)
}
