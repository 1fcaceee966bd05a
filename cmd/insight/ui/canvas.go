package ui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ink selects the style a canvas cell is painted with.
type Ink int

const (
	InkNone Ink = iota
	InkStarDim
	InkStar
	InkLink
	InkHub
	InkLeaf
	InkExplored
	InkIndicator
	InkHover
	InkHubLabel
	InkLabel
	InkLabelMuted
	InkLabelHover
	InkBadge
	InkBadgeDone
	inkCount
)

type cell struct {
	r    rune
	ink  Ink
	cont bool // right half of a double-width rune
}

var blank = cell{r: ' '}

// Canvas is a fixed-size grid of terminal cells. Double-width runes take
// two cells; overwriting either half clears the other.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas allocates a blank canvas.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	c.Clear()
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

func (c *Canvas) in(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

func (c *Canvas) erase(col, row int) {
	if !c.in(col, row) {
		return
	}
	i := row*c.cols + col
	cur := c.cells[i]
	switch {
	case cur.cont && col > 0:
		c.cells[i-1] = blank
	case !cur.cont && runewidth.RuneWidth(cur.r) == 2 && col+1 < c.cols:
		c.cells[i+1] = blank
	}
	c.cells[i] = blank
}

// Set paints r at (col, row) and returns its width. Runes that do not fit
// entirely are dropped.
func (c *Canvas) Set(col, row int, r rune, ink Ink) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0
	}
	if !c.in(col, row) || !c.in(col+w-1, row) {
		return w
	}
	for k := 0; k < w; k++ {
		c.erase(col+k, row)
	}
	i := row*c.cols + col
	c.cells[i] = cell{r: r, ink: ink}
	if w == 2 {
		c.cells[i+1] = cell{ink: ink, cont: true}
	}
	return w
}

// At returns the rune at (col, row). The right half of a wide rune reads
// as zero.
func (c *Canvas) At(col, row int) (rune, Ink) {
	if !c.in(col, row) {
		return 0, InkNone
	}
	cl := c.cells[row*c.cols+col]
	if cl.cont {
		return 0, cl.ink
	}
	return cl.r, cl.ink
}

// Text paints s starting at col and returns the column after it.
func (c *Canvas) Text(col, row int, s string, ink Ink) int {
	for _, r := range s {
		col += c.Set(col, row, r, ink)
	}
	return col
}

// CenterText paints s centered on col.
func (c *Canvas) CenterText(col, row int, s string, ink Ink) {
	c.Text(col-runewidth.StringWidth(s)/2, row, s, ink)
}

// Line draws a dashed line from (c0, r0) to (c1, r1), skipping both
// endpoints so node glyphs stay on top. Only blank cells are painted.
func (c *Canvas) Line(c0, r0, c1, r1 int, r rune, ink Ink) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	step := 0
	x, y := c0, r0
	for {
		if (x != c0 || y != r0) && (x != c1 || y != r1) && step%3 != 2 && c.in(x, y) {
			if cur := c.cells[y*c.cols+x]; cur == blank {
				c.Set(x, y, r, ink)
			}
		}
		if x == c1 && y == r1 {
			return
		}
		step++
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			x += sc
		}
		if e2 <= dc {
			e += dc
			y += sr
		}
	}
}

// String returns the canvas as plain text.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for _, cl := range c.cells[row*c.cols : (row+1)*c.cols] {
			if !cl.cont {
				sb.WriteRune(cl.r)
			}
		}
	}
	return sb.String()
}

// Render returns the canvas with each run of same-ink cells styled.
func (c *Canvas) Render(s Styles) string {
	var sb, run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		ink := InkNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if ink == InkNone {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(s.Ink(ink).Render(run.String()))
			}
			run.Reset()
		}
		for _, cl := range c.cells[row*c.cols : (row+1)*c.cols] {
			if cl.cont {
				continue
			}
			if cl.ink != ink {
				flush()
				ink = cl.ink
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ---------------------------------------------------------------------------
// camera
// ---------------------------------------------------------------------------

// Camera maps layout units to canvas cells. At zoom 1 the whole layout
// plane fits the canvas; cells are treated as twice as tall as wide.
type Camera struct {
	PanX, PanY       float64 // cells
	Zoom             float64
	MinZoom, MaxZoom float64

	cols, rows     int
	planeW, planeH float64
}

// NewCamera returns a camera at zoom 1 clamped to [minZoom, maxZoom].
func NewCamera(minZoom, maxZoom float64) *Camera {
	c := &Camera{}
	c.SetZoomRange(minZoom, maxZoom)
	c.Reset()
	return c
}

// SetZoomRange changes the clamp and re-applies it.
func (c *Camera) SetZoomRange(minZoom, maxZoom float64) {
	if minZoom <= 0 {
		minZoom = 0.1
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	c.MinZoom, c.MaxZoom = minZoom, maxZoom
	if c.Zoom != 0 {
		c.SetZoom(c.Zoom)
	}
}

// Resize sets the canvas and plane dimensions.
func (c *Camera) Resize(cols, rows int, planeW, planeH float64) {
	c.cols, c.rows = cols, rows
	c.planeW, c.planeH = planeW, planeH
}

// Reset centers the plane at zoom 1.
func (c *Camera) Reset() {
	c.PanX, c.PanY = 0, 0
	c.SetZoom(1)
}

// Pan shifts the view by whole cells.
func (c *Camera) Pan(dCols, dRows float64) {
	c.PanX += dCols
	c.PanY += dRows
}

// SetZoom clamps z into range and returns the applied value.
func (c *Camera) SetZoom(z float64) float64 {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
	return c.Zoom
}

// ZoomAt scales by factor while keeping the point under (col, row) fixed.
func (c *Camera) ZoomAt(col, row int, factor float64) {
	wx, wy := c.ToWorld(float64(col), float64(row))
	c.SetZoom(c.Zoom * factor)
	nc, nr := c.ToCell(wx, wy)
	c.PanX += float64(col) - nc
	c.PanY += float64(row) - nr
}

// scale returns cells per layout unit on each axis.
func (c *Camera) scale() (sx, sy float64) {
	if c.planeW <= 0 || c.planeH <= 0 || c.cols <= 0 || c.rows <= 0 {
		return 0, 0
	}
	base := math.Min(float64(c.cols)/c.planeW, 2*float64(c.rows)/c.planeH)
	return base * c.Zoom, base * c.Zoom / 2
}

// ToCell projects a layout point onto the canvas.
func (c *Camera) ToCell(x, y float64) (col, row float64) {
	sx, sy := c.scale()
	col = (x-c.planeW/2)*sx + float64(c.cols)/2 + c.PanX
	row = (y-c.planeH/2)*sy + float64(c.rows)/2 + c.PanY
	return col, row
}

// ToWorld is the inverse of ToCell.
func (c *Camera) ToWorld(col, row float64) (x, y float64) {
	sx, sy := c.scale()
	if sx == 0 || sy == 0 {
		return c.planeW / 2, c.planeH / 2
	}
	x = (col-float64(c.cols)/2-c.PanX)/sx + c.planeW/2
	y = (row-float64(c.rows)/2-c.PanY)/sy + c.planeH/2
	return x, y
}

// UnitsPerCell is the horizontal size of one cell in layout units.
func (c *Camera) UnitsPerCell() float64 {
	sx, _ := c.scale()
	if sx == 0 {
		return 0
	}
	return 1 / sx
}
