package insight

import "fmt"

// Path is the active drill-down chain. Keywords()[0] is the root problem and
// Keywords()[i] is the keyword drilled into at depth i+1.
type Path struct {
	keywords []string
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// Push appends keyword as the new deepest level.
func (p *Path) Push(keyword string) {
	p.keywords = append(p.keywords, keyword)
}

// Truncate keeps levels [0..index] inclusive. It returns false and leaves the
// path unchanged when index is out of range.
func (p *Path) Truncate(index int) bool {
	if index < 0 || index >= len(p.keywords) {
		return false
	}
	p.keywords = p.keywords[:index+1 : index+1]
	return true
}

// Reset empties the path.
func (p *Path) Reset() {
	p.keywords = nil
}

// Depth is the number of levels on the path.
func (p *Path) Depth() int { return len(p.keywords) }

// Current returns the deepest keyword.
func (p *Path) Current() (string, bool) {
	if len(p.keywords) == 0 {
		return "", false
	}
	return p.keywords[len(p.keywords)-1], true
}

// Keywords returns a copy of the path.
func (p *Path) Keywords() []string {
	return append([]string(nil), p.keywords...)
}

// CheckConsistency verifies that every level except possibly the deepest has
// a cached result.
func CheckConsistency(p *Path, c *Cache) error {
	kws := p.keywords
	for i := 0; i < len(kws)-1; i++ {
		if !c.Has(kws[i]) {
			return fmt.Errorf("path level %d (%q) has no cached result", i, kws[i])
		}
	}
	return nil
}
