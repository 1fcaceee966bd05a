package provider

import (
	"context"
	"fmt"
	"time"

	"insightvector/internal/logging"
)

// Options describes the provider stack to assemble.
type Options struct {
	APIKey string

	PrimaryModel           string
	PrimaryThinkingBudget  int32
	FallbackModel          string
	FallbackThinkingBudget int32
	Timeout                time.Duration

	Synthetic   bool   // append the synthetic provider as last resort
	ArchivePath string // empty disables archiving
}

// Stack is an assembled provider plus the resources it owns.
type Stack struct {
	Provider Provider
	Archive  *Archive // nil when archiving is off
}

// Close releases the archive, if any.
func (s *Stack) Close() error {
	if s.Archive != nil {
		return s.Archive.Close()
	}
	return nil
}

// New builds primary model, fallback model and synthetic fallback into a
// chain, optionally wrapped in an archive. Without an API key only the
// synthetic member remains; with neither ErrMissingAPIKey is returned.
func New(ctx context.Context, o Options) (*Stack, error) {
	var members []Provider

	if o.APIKey != "" {
		primary, err := NewGemini(ctx, GeminiConfig{
			APIKey: o.APIKey, Model: o.PrimaryModel, ThinkingBudget: o.PrimaryThinkingBudget, Timeout: o.Timeout,
		})
		if err != nil {
			return nil, err
		}
		members = append(members, primary)
		if o.FallbackModel != "" && o.FallbackModel != primary.Model() {
			fallback, err := NewGemini(ctx, GeminiConfig{
				APIKey: o.APIKey, Model: o.FallbackModel, ThinkingBudget: o.FallbackThinkingBudget, Timeout: o.Timeout,
			})
			if err != nil {
				return nil, err
			}
			members = append(members, fallback)
		}
	} else {
		logging.ProviderWarn("no API key configured; Gemini providers disabled")
	}

	if o.Synthetic {
		members = append(members, NewSynthetic())
	}
	if len(members) == 0 {
		return nil, ErrMissingAPIKey
	}

	stack := &Stack{}
	var p Provider = NewChain(members...)
	if o.ArchivePath != "" {
		archive, err := OpenArchive(o.ArchivePath, p)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		stack.Archive = archive
		p = archive
	}
	stack.Provider = p
	logging.Provider("provider stack ready: %s", NameOf(p))
	return stack, nil
}
