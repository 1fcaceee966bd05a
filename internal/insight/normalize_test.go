package insight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixVectors() []Vector {
	return []Vector{
		{ID: "v1", Keyword: "结构性熵增 (Structural Entropy)", Weight: 0.9},
		{ID: "v2", Keyword: "路径依赖 (Path Dependency)", Weight: 0.8},
		{ID: "v3", Keyword: "博弈均衡 (Game Equilibrium)", Weight: 0.7},
		{ID: "v4", Keyword: "信息熵 (Information Entropy)", Weight: 0.6},
		{ID: "v5", Keyword: "涌现机制 (Emergence Mechanism)", Weight: 0.5},
		{ID: "v6", Keyword: "控制反馈 (Control Feedback)", Weight: 0.4},
	}
}

func TestNormalize_AcceptsWellFormedResult(t *testing.T) {
	r := &Result{Vectors: sixVectors(), FirstPrinciple: "p", OldPattern: "o", NewMetaphor: "n"}
	warnings, err := Normalize(r)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "v1", r.Vectors[0].ID)
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		r    *Result
	}{
		{"nil", nil},
		{"no vectors", &Result{FirstPrinciple: "p"}},
		{"blank keyword", &Result{Vectors: []Vector{{ID: "a", Keyword: "   "}}, FirstPrinciple: "p"}},
		{"no principle", &Result{Vectors: sixVectors(), FirstPrinciple: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.r)
			require.ErrorIs(t, err, ErrUnusableResult)
		})
	}
}

func TestNormalize_RepairsIdsAndWeights(t *testing.T) {
	vs := sixVectors()
	vs[1].ID = ""
	vs[2].ID = "v1"
	vs[3].ID = "center"
	vs[4].Weight = 1.7
	vs[5].Weight = math.NaN()
	vs[0].Weight = -0.2
	r := &Result{Vectors: vs, FirstPrinciple: "p"}

	warnings, err := Normalize(r)
	require.NoError(t, err)
	assert.Len(t, warnings, 6)

	ids := map[string]bool{}
	for _, v := range r.Vectors {
		assert.NotEmpty(t, v.ID)
		assert.NotEqual(t, "center", v.ID)
		assert.False(t, ids[v.ID], "duplicate id %s", v.ID)
		ids[v.ID] = true
		assert.GreaterOrEqual(t, v.Weight, 0.0)
		assert.LessOrEqual(t, v.Weight, 1.0)
	}
	assert.Equal(t, "v1", r.Vectors[0].ID, "first occurrence keeps its id")
}

func TestNormalize_CardinalityIsOnlyAWarning(t *testing.T) {
	r := &Result{Vectors: sixVectors()[:2], FirstPrinciple: "p"}
	warnings, err := Normalize(r)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "got 2 vectors")
}
