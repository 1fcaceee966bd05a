package explorer

import (
	"time"

	"insightvector/internal/config"
	"insightvector/internal/explore"
	"insightvector/internal/layout"
	"insightvector/internal/logging"
	"insightvector/internal/provider"
)

// ControllerConfig extracts the stage machine settings.
func ControllerConfig(c *config.Config) explore.Config {
	return explore.Config{
		MaxDepth:         c.Explore.MaxDepth,
		MappingDelay:     c.GetMappingDelay(),
		PrincipleDelay:   c.GetPrincipleDelay(),
		LoadingTextDelay: c.GetLoadingTextDelay(),
	}
}

// LayoutConfig extracts the force layout tuning. Hit radii and the step
// rate are not configurable.
func LayoutConfig(c *config.Config) layout.Config {
	l := c.Layout
	out := layout.DefaultConfig()
	out.Width, out.Height = l.Width, l.Height
	out.Normal = layout.Tuning{
		LinkDistance:  l.Normal.LinkDistance,
		Charge:        l.Normal.Charge,
		CollideRadius: l.Normal.CollideRadius,
	}
	out.Compress = layout.Tuning{
		LinkDistance:  l.Compress.LinkDistance,
		Charge:        l.Compress.Charge,
		CollideRadius: l.Compress.CollideRadius,
	}
	out.RecompressLinkDistance = l.RecompressLinkDistance
	out.RecompressCharge = l.RecompressCharge
	out.RecompressAlpha = l.RecompressAlpha
	out.CompressDuration = c.GetCompressDuration()
	out.DragAlphaTarget = l.DragAlphaTarget
	out.VelocityDecay = l.VelocityDecay
	out.AlphaMin = l.AlphaMin
	out.AlphaDecay = l.AlphaDecay
	out.Stars = l.Stars
	out.Seed = l.Seed
	return out
}

// ProviderOptions extracts the provider stack settings.
func ProviderOptions(c *config.Config) provider.Options {
	o := provider.Options{
		APIKey:                 c.LLM.APIKey,
		PrimaryModel:           c.LLM.PrimaryModel,
		PrimaryThinkingBudget:  c.LLM.PrimaryThinkingBudget,
		FallbackModel:          c.LLM.FallbackModel,
		FallbackThinkingBudget: c.LLM.FallbackThinkingBudget,
		Timeout:                c.GetLLMTimeout(),
		Synthetic:              c.LLM.SyntheticFallback,
	}
	if c.Archive.Enabled {
		o.ArchivePath = c.Archive.Path
	}
	return o
}

// LoggingOptions extracts the category logger settings for logs under dir.
func LoggingOptions(c *config.Config, dir string) logging.Options {
	return logging.Options{
		Dir:        dir,
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Categories: c.Logging.Categories,
	}
}

// FrameInterval converts ui.fps into a tick period.
func FrameInterval(c *config.Config) time.Duration {
	fps := c.UI.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
