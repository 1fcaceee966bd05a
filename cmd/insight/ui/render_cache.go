package ui

import (
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// RenderCache provides hash-based caching for rendered content.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	order   []uint64
	maxSize int
}

// cacheEntry stores cached render output with metadata.
type cacheEntry struct {
	content string
	hits    int
}

// NewRenderCache creates a new render cache with the specified max size.
// The oldest entry is evicted once maxSize is reached.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[uint64]*cacheEntry),
		maxSize: maxSize,
	}
}

// computeHash computes a FNV-1a hash for cache keys.
//
// Supported types are intentionally limited to avoid allocations in hot paths.
func computeHash(inputs ...interface{}) uint64 {
	h := fnv.New64a()
	var b [8]byte
	putUint := func(u uint64) {
		for i := range b {
			b[i] = byte(u >> (8 * i))
		}
		h.Write(b[:])
	}

	for _, input := range inputs {
		switch v := input.(type) {
		case string:
			putUint(uint64(len(v)))
			h.Write([]byte(v))
		case int:
			putUint(uint64(v))
		case float64:
			putUint(math.Float64bits(v))
		case bool:
			if v {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}

	return h.Sum64()
}

// ComputeKey generates a cache key from multiple inputs.
func ComputeKey(inputs ...interface{}) uint64 {
	return computeHash(inputs...)
}

// Get retrieves cached content if available.
func (rc *RenderCache) Get(key uint64) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if entry, ok := rc.entries[key]; ok {
		entry.hits++
		return entry.content, true
	}
	return "", false
}

// Set stores rendered content in the cache.
func (rc *RenderCache) Set(key uint64, content string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if entry, ok := rc.entries[key]; ok {
		entry.content = content
		return
	}
	for len(rc.order) >= rc.maxSize {
		delete(rc.entries, rc.order[0])
		rc.order = rc.order[1:]
	}
	rc.entries[key] = &cacheEntry{content: content, hits: 1}
	rc.order = append(rc.order, key)
}

// Len returns the number of cached entries.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Clear empties the cache.
func (rc *RenderCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries = make(map[uint64]*cacheEntry)
	rc.order = nil
}

// GetOrCompute retrieves from cache or computes if missing.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() string) string {
	if content, ok := rc.Get(key); ok {
		return content
	}

	content := compute()
	rc.Set(key, content)
	return content
}

// Markdown renders markdown through glamour, keeping one renderer per wrap
// width and caching the output.
type Markdown struct {
	dark      bool
	cache     *RenderCache
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a markdown renderer for the given theme.
func NewMarkdown(dark bool) *Markdown {
	return &Markdown{
		dark:      dark,
		cache:     NewRenderCache(64),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// SetDark switches the glamour style and drops everything rendered under
// the old one.
func (m *Markdown) SetDark(dark bool) {
	if dark == m.dark {
		return
	}
	m.dark = dark
	m.renderers = make(map[int]*glamour.TermRenderer)
	m.cache.Clear()
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	style := "light"
	if m.dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

// Render returns md rendered for width columns. If glamour fails the raw
// text is returned.
func (m *Markdown) Render(md string, width int) string {
	if width < 20 {
		width = 20
	}
	key := ComputeKey(md, width, m.dark)
	return m.cache.GetOrCompute(key, func() string {
		r, err := m.renderer(width)
		if err != nil {
			return md
		}
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return strings.Trim(out, "\n")
	})
}
