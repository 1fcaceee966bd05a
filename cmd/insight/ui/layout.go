// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for the explorer screen
const (
	// Fixed chrome
	HeaderHeight     = 2 // brand row + divider
	TabBarHeight     = 2
	BreadcrumbHeight = 3 // bordered crumbs
	FooterHeight     = 3 // divider + path + protocol line
	ContentIndent    = 2

	// Breadcrumb labels longer than BreadcrumbLimit runes keep BreadcrumbKeep.
	BreadcrumbLimit = 12
	BreadcrumbKeep  = 10

	// Data tab
	WeightBarWidth = 20
	DataListRatio  = 0.5

	// Canvas hit testing, in cells
	HitSlackCells = 1

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 20
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
	TabsVisible    bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int, tabs bool) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
		TabsVisible:    tabs,
	}
}

// BodyHeight is what remains between header, tab bar and footer.
func (l LayoutConfig) BodyHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight
	if l.TabsVisible {
		h -= TabBarHeight
	}
	if h < 1 {
		h = 1
	}
	return h
}

// CanvasSize returns the graph canvas dimensions. The map tab gives up rows
// to the breadcrumb bar.
func (l LayoutConfig) CanvasSize() (cols, rows int) {
	cols = l.TerminalWidth
	rows = l.BodyHeight()
	if l.TabsVisible {
		rows -= BreadcrumbHeight
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// CanvasTop is the terminal row where the canvas starts.
func (l LayoutConfig) CanvasTop() int {
	top := HeaderHeight
	if l.TabsVisible {
		top += TabBarHeight + BreadcrumbHeight
	}
	return top
}

// ContentWidth returns the usable width for text panes
func (l LayoutConfig) ContentWidth() int {
	w := l.TerminalWidth - 2*ContentIndent
	if w < 20 {
		w = 20
	}
	return w
}

// DataColumns splits the data tab into list and detail widths.
func (l LayoutConfig) DataColumns() (list, detail int) {
	w := l.ContentWidth()
	if l.IsCompact {
		return w, w
	}
	list = int(float64(w) * DataListRatio)
	return list, w - list - 1
}
