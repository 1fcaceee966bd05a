package ui

import (
	"math"

	"insightvector/internal/insight"
	"insightvector/internal/layout"
)

// Graph glyphs.
const (
	GlyphHub       = '◉'
	GlyphLeaf      = '●'
	GlyphExplored  = '◆'
	GlyphIndicator = '•'
	GlyphLink      = '·'
	GlyphStar      = '.'
	GlyphStarLit   = '·'

	BadgeExplored = "✓ 已解构"
	BadgeDrill    = "○ 钻取分析"
)

// GraphOptions carries the interaction state that changes how a frame is
// painted.
type GraphOptions struct {
	Hovered  string // node id under the pointer
	Focused  string // node id selected from the keyboard
	CanDrill bool   // drill badges are offered only when true
	Stars    bool
}

// DrawGraph rasterizes one layout frame: stars, then links, then nodes
// and their labels.
func DrawGraph(cv *Canvas, cam *Camera, f layout.Frame, o GraphOptions) {
	if o.Stars {
		for _, s := range f.Stars {
			col, row := cam.ToCell(s.X, s.Y)
			r, ink := GlyphStar, InkStarDim
			if s.Brightness > 0.25 {
				r, ink = GlyphStarLit, InkStar
			}
			cv.Set(round(col), round(row), r, ink)
		}
	}

	cols, rows := cv.Size()
	for _, l := range f.Links {
		c0, r0 := cam.ToCell(l.X1, l.Y1)
		c1, r1 := cam.ToCell(l.X2, l.Y2)
		c0, r0, c1, r1, ok := clip(c0, r0, c1, r1, float64(cols), float64(rows))
		if !ok {
			continue
		}
		cv.Line(round(c0), round(r0), round(c1), round(r1), GlyphLink, InkLink)
	}

	// Hub last so it stays readable once the graph collapses onto it.
	for _, n := range f.Nodes {
		if n.Kind == layout.KindLeaf {
			drawLeaf(cv, cam, n, o)
		}
	}
	for _, n := range f.Nodes {
		if n.Kind == layout.KindHub {
			drawHub(cv, cam, n, o)
		}
	}
}

func drawHub(cv *Canvas, cam *Camera, n layout.NodeState, o GraphOptions) {
	c, r := cam.ToCell(n.X, n.Y)
	col, row := round(c), round(r)
	glyph, label := InkHub, InkHubLabel
	if n.ID == o.Hovered {
		glyph, label = InkHover, InkLabelHover
	}
	cv.Set(col, row, GlyphHub, glyph)
	cv.CenterText(col, row+1, n.Label, label)
}

func drawLeaf(cv *Canvas, cam *Camera, n layout.NodeState, o GraphOptions) {
	c, r := cam.ToCell(n.X, n.Y)
	col, row := round(c), round(r)
	lit := n.ID == o.Hovered || n.ID == o.Focused

	glyph, ink := GlyphLeaf, InkLeaf
	if n.Explored {
		glyph, ink = GlyphExplored, InkExplored
		cv.Set(col, row-1, GlyphIndicator, InkIndicator)
	}
	if lit {
		ink = InkHover
	}
	cv.Set(col, row, glyph, ink)

	native, english, ok := insight.SplitBilingual(n.Label)
	nativeInk, englishInk := InkLabel, InkLabelMuted
	if lit {
		nativeInk, englishInk = InkLabelHover, InkLabelHover
	}
	next := row + 1
	if ok {
		cv.CenterText(col, next, native, nativeInk)
		cv.CenterText(col, next+1, english, englishInk)
		next += 2
	} else {
		cv.CenterText(col, next, n.Label, nativeInk)
		next++
	}

	if o.CanDrill && lit {
		if n.Explored {
			cv.CenterText(col, next, BadgeExplored, InkBadgeDone)
		} else {
			cv.CenterText(col, next, BadgeDrill, InkBadge)
		}
	}
}

// clip trims a segment to the box [-1, w] x [-1, h] (Liang-Barsky).
func clip(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	for _, v := range []float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 + 1},
		{dx, w - x0},
		{-dy, y0 + 1},
		{dy, h - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.MinInt32
	}
	return int(math.Floor(v + 0.5))
}
