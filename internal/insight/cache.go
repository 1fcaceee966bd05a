package insight

import "sort"

// Cache maps an explored keyword (exact, case-sensitive) to its result.
// Entries are write-once: a second Put for the same keyword is ignored.
// Stored and returned results are copies, so an entry never changes after
// insertion.
type Cache struct {
	entries map[string]*Result
	order   []string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Result)}
}

// Get returns a copy of the result cached for keyword.
func (c *Cache) Get(keyword string) (*Result, bool) {
	r, ok := c.entries[keyword]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Has reports whether keyword has been explored this session.
func (c *Cache) Has(keyword string) bool {
	_, ok := c.entries[keyword]
	return ok
}

// Put records result for keyword. It returns false and leaves the existing
// entry untouched when keyword is already present or result is nil.
func (c *Cache) Put(keyword string, result *Result) bool {
	if result == nil {
		return false
	}
	if _, exists := c.entries[keyword]; exists {
		return false
	}
	c.entries[keyword] = result.Clone()
	c.order = append(c.order, keyword)
	return true
}

// Len returns the number of cached keywords.
func (c *Cache) Len() int { return len(c.entries) }

// Keys returns cached keywords in insertion order.
func (c *Cache) Keys() []string {
	return append([]string(nil), c.order...)
}

// Clear drops every entry. Entries are never removed individually.
func (c *Cache) Clear() {
	c.entries = make(map[string]*Result)
	c.order = nil
}

// Snapshot returns a deep copy of the whole cache keyed by keyword.
func (c *Cache) Snapshot() map[string]*Result {
	out := make(map[string]*Result, len(c.entries))
	for k, v := range c.entries {
		out[k] = v.Clone()
	}
	return out
}

// Explored is the read-only view the layout engine uses to mark leaves that
// were already visited anywhere in the exploration forest.
type Explored interface {
	Has(keyword string) bool
}

// KeywordSet is a frozen Explored view.
type KeywordSet map[string]struct{}

// Has implements Explored.
func (s KeywordSet) Has(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// Sorted returns the set members in lexical order.
func (s KeywordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ExploredSet freezes the current key set so a render pass can hold it
// without seeing later insertions.
func (c *Cache) ExploredSet() KeywordSet {
	set := make(KeywordSet, len(c.entries))
	for k := range c.entries {
		set[k] = struct{}{}
	}
	return set
}
