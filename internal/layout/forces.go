package layout

import (
	"math"
	"math/rand"
)

// Force mutates node velocities (or positions, for centering) once per step.
type Force interface {
	Initialize(nodes []*Node, links []*Link, rng *rand.Rand)
	Apply(alpha float64)
}

// jiggle returns a tiny random offset used to separate coincident nodes.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}

// ---------------------------------------------------------------------------
// link
// ---------------------------------------------------------------------------

// LinkForce pulls linked nodes toward Distance apart. Strength and bias
// follow node degree so the hub is not dragged around by its leaves.
type LinkForce struct {
	Distance float64

	links    []*Link
	strength []float64
	bias     []float64
	rng      *rand.Rand
}

func (f *LinkForce) Initialize(nodes []*Node, links []*Link, rng *rand.Rand) {
	f.links, f.rng = links, rng
	count := make([]int, len(nodes))
	for _, l := range links {
		count[l.Source.index]++
		count[l.Target.index]++
	}
	f.strength = make([]float64, len(links))
	f.bias = make([]float64, len(links))
	for i, l := range links {
		s, t := count[l.Source.index], count[l.Target.index]
		f.strength[i] = 1 / float64(min(s, t))
		f.bias[i] = float64(s) / float64(s+t)
	}
}

func (f *LinkForce) Apply(alpha float64) {
	for i, l := range f.links {
		src, tgt := l.Source, l.Target
		x := tgt.X + tgt.VX - src.X - src.VX
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if x == 0 {
			x = jiggle(f.rng)
		}
		if y == 0 {
			y = jiggle(f.rng)
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - f.Distance) / d * alpha * f.strength[i]
		x, y = x*k, y*k
		b := f.bias[i]
		tgt.VX -= x * b
		tgt.VY -= y * b
		src.VX += x * (1 - b)
		src.VY += y * (1 - b)
	}
}

// ---------------------------------------------------------------------------
// many-body
// ---------------------------------------------------------------------------

// ManyBody applies a pairwise charge between every two nodes. Negative
// strength repels. Graphs here never exceed a handful of nodes, so the
// exact O(n²) sum is used instead of a Barnes-Hut approximation.
type ManyBody struct {
	Strength float64

	nodes []*Node
	rng   *rand.Rand
}

const distanceMin2 = 1.0

func (f *ManyBody) Initialize(nodes []*Node, _ []*Link, rng *rand.Rand) {
	f.nodes, f.rng = nodes, rng
}

func (f *ManyBody) Apply(alpha float64) {
	if f.Strength == 0 {
		return
	}
	for _, n := range f.nodes {
		for _, o := range f.nodes {
			if n == o {
				continue
			}
			x, y := o.X-n.X, o.Y-n.Y
			l := x*x + y*y
			if x == 0 {
				x = jiggle(f.rng)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.rng)
				l += y * y
			}
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			w := f.Strength * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

// ---------------------------------------------------------------------------
// center
// ---------------------------------------------------------------------------

// Center translates the whole system so its mean sits at (X, Y).
type Center struct {
	X, Y float64

	nodes []*Node
}

func (f *Center) Initialize(nodes []*Node, _ []*Link, _ *rand.Rand) { f.nodes = nodes }

func (f *Center) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(f.nodes)) - f.X
	sy = sy/float64(len(f.nodes)) - f.Y
	for _, n := range f.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// ---------------------------------------------------------------------------
// collide
// ---------------------------------------------------------------------------

// Collide pushes apart nodes closer than twice Radius.
type Collide struct {
	Radius float64

	nodes []*Node
	rng   *rand.Rand
}

func (f *Collide) Initialize(nodes []*Node, _ []*Link, rng *rand.Rand) {
	f.nodes, f.rng = nodes, rng
}

func (f *Collide) Apply(float64) {
	if f.Radius <= 0 {
		return
	}
	r := 2 * f.Radius
	for i, n := range f.nodes {
		xi, yi := n.X+n.VX, n.Y+n.VY
		for _, o := range f.nodes[i+1:] {
			x := xi - (o.X + o.VX)
			y := yi - (o.Y + o.VY)
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = jiggle(f.rng)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.rng)
				l += y * y
			}
			l = math.Sqrt(l)
			// Equal radii split the correction evenly.
			k := (r - l) / l / 2
			x, y = x*k, y*k
			n.VX += x
			n.VY += y
			o.VX -= x
			o.VY -= y
		}
	}
}
