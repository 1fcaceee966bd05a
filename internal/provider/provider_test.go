package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"insightvector/internal/insight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	name  string
	err   error
	calls int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &insight.Result{
		Vectors:        []insight.Vector{{ID: "v1", Keyword: s.name}},
		FirstPrinciple: problem + "/" + scope,
	}, nil
}

func TestChainFallsBackInOrder(t *testing.T) {
	pro := &scripted{name: "pro", err: errors.New("quota")}
	flash := &scripted{name: "flash"}
	never := &scripted{name: "never"}

	c := NewChain(pro, nil, flash, never)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "chain[pro,flash,never]", c.Name())

	r, err := c.FetchInsight(context.Background(), "p", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "flash", r.Vectors[0].Keyword)
	assert.Equal(t, "p/ctx", r.FirstPrinciple)
	assert.Equal(t, 1, pro.calls)
	assert.Equal(t, 1, flash.calls)
	assert.Zero(t, never.calls)
}

func TestChainReturnsLastError(t *testing.T) {
	first := errors.New("first")
	last := &FetchError{Provider: "gemini", Model: "flash", Err: ErrEmptyResponse}
	c := NewChain(&scripted{name: "a", err: first}, &scripted{name: "b", err: last})

	_, err := c.FetchInsight(context.Background(), "p", "")
	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.False(t, errors.Is(err, first))
	assert.Equal(t, "gemini (flash): empty model response", err.Error())
}

func TestChainStopsOnCancel(t *testing.T) {
	a := &scripted{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChain(a).FetchInsight(ctx, "p", "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, a.calls)
}

func TestEmptyChain(t *testing.T) {
	_, err := NewChain().FetchInsight(context.Background(), "p", "")
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestFuncAndNameOf(t *testing.T) {
	f := Func(func(ctx context.Context, problem, scope string) (*insight.Result, error) {
		return nil, errors.New("nope")
	})
	_, err := f.FetchInsight(context.Background(), "p", "")
	require.Error(t, err)
	assert.True(t, strings.HasSuffix(NameOf(f), "provider.Func"))
	assert.Equal(t, "synthetic", NameOf(NewSynthetic()))
}

func TestSyntheticEmbedsProblem(t *testing.T) {
	r, err := NewSynthetic().FetchInsight(context.Background(), "转行", "ignored")
	require.NoError(t, err)
	require.Len(t, r.Vectors, 6)

	warnings, err := insight.Normalize(r)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "v1", r.Vectors[0].ID)
	assert.Equal(t, "v6", r.Vectors[5].ID)
	assert.Contains(t, r.Vectors[0].Description, "“转行”")
	assert.Contains(t, r.FirstPrinciple, "转行")
	assert.Contains(t, r.NewMetaphor, "冲浪手")
	for _, v := range r.Vectors {
		_, _, ok := insight.SplitBilingual(v.Keyword)
		assert.Truef(t, ok, "keyword %q is not bilingual", v.Keyword)
		assert.NotContains(t, v.Description, "{p}")
	}
}

func TestSyntheticHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSynthetic().FetchInsight(ctx, "p", "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStackWithoutKey(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	stack, err := New(context.Background(), Options{Synthetic: true})
	require.NoError(t, err)
	defer stack.Close()
	assert.Nil(t, stack.Archive)
	assert.Equal(t, "chain[synthetic]", NameOf(stack.Provider))

	r, err := stack.Provider.FetchInsight(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Len(t, r.Vectors, 6)
}
