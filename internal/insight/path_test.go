package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_PushTruncateReset(t *testing.T) {
	p := NewPath()
	_, ok := p.Current()
	assert.False(t, ok)

	p.Push("root")
	p.Push("mid")
	p.Push("leaf")
	assert.Equal(t, 3, p.Depth())

	require.True(t, p.Truncate(1))
	assert.Equal(t, []string{"root", "mid"}, p.Keywords())

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "mid", cur)

	assert.False(t, p.Truncate(5))
	assert.False(t, p.Truncate(-1))
	assert.Equal(t, 2, p.Depth())

	p.Reset()
	assert.Equal(t, 0, p.Depth())
	assert.Empty(t, p.Keywords())
}

func TestPath_TruncateDoesNotAliasDroppedLevels(t *testing.T) {
	p := NewPath()
	p.Push("a")
	p.Push("b")
	p.Push("c")
	before := p.Keywords()

	p.Truncate(0)
	p.Push("x")

	assert.Equal(t, []string{"a", "b", "c"}, before)
	assert.Equal(t, []string{"a", "x"}, p.Keywords())
}

func TestCheckConsistency(t *testing.T) {
	c := NewCache()
	p := NewPath()
	p.Push("root")
	assert.NoError(t, CheckConsistency(p, c), "deepest level may be mid-fetch")

	p.Push("child")
	assert.Error(t, CheckConsistency(p, c))

	c.Put("root", sampleResult("root"))
	assert.NoError(t, CheckConsistency(p, c))
}
