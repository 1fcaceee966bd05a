// Package provider implements the insight providers the explorer calls to
// decompose a problem: Gemini models, a synthetic fallback, an ordered
// fallback chain and an archiving decorator.
package provider

import (
	"context"
	"errors"
	"fmt"

	"insightvector/internal/insight"
	"insightvector/internal/logging"
)

// Provider decomposes problem into an insight result. A non-empty scope is
// the parent keyword: the request becomes a deeper analysis within it.
type Provider interface {
	FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error)
}

// Named providers report a label for logs and archive rows.
type Named interface {
	Name() string
}

var (
	// ErrUnusableResult is returned when provider output fails validation.
	ErrUnusableResult = insight.ErrUnusableResult
	// ErrEmptyResponse is returned when a model answers with no text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMissingAPIKey is returned when no credentials are configured.
	ErrMissingAPIKey = errors.New("no API key configured")
	// ErrNoProviders is returned by an empty chain.
	ErrNoProviders = errors.New("no providers configured")
)

// FetchError records which backend failed.
type FetchError struct {
	Provider string
	Model    string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (%s): %v", e.Provider, e.Model, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NameOf returns p's name, or its type when it has none.
func NameOf(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, problem, scope string) (*insight.Result, error)

// FetchInsight calls f.
func (f Func) FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error) {
	return f(ctx, problem, scope)
}

// Chain tries providers in order and returns the first success.
type Chain struct {
	providers []Provider
}

// NewChain builds a chain; nil entries are skipped.
func NewChain(providers ...Provider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Name lists the chain members.
func (c *Chain) Name() string {
	name := "chain["
	for i, p := range c.providers {
		if i > 0 {
			name += ","
		}
		name += NameOf(p)
	}
	return name + "]"
}

// Len returns the number of members.
func (c *Chain) Len() int { return len(c.providers) }

// FetchInsight returns the first successful result. When every member fails
// the last error is returned. A cancelled context stops the chain.
func (c *Chain) FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}
	var lastErr error
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := p.FetchInsight(ctx, problem, scope)
		if err == nil {
			if i > 0 {
				logging.Provider("%s answered after %d fallback(s)", NameOf(p), i)
			}
			return result, nil
		}
		logging.ProviderWarn("%s failed for %q: %v", NameOf(p), problem, err)
		lastErr = err
	}
	return nil, lastErr
}
