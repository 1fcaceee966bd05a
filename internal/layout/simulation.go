package layout

import (
	"math"
	"math/rand"
)

// Defaults matching the classic velocity Verlet force simulation.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	initialRadius        = 10.0
)

var (
	// DefaultAlphaDecay cools alpha from 1 to AlphaMin in 300 steps.
	DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

	initialAngle = math.Pi * (3 - math.Sqrt(5))
)

// Simulation advances nodes under a set of named forces. Alpha is the
// simulation energy; it decays toward AlphaTarget and the simulation stops
// once it falls below AlphaMin.
type Simulation struct {
	nodes []*Node
	links []*Link
	rng   *rand.Rand

	forces map[string]Force
	order  []string

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	running       bool
}

// NewSimulation places unpositioned nodes on a phyllotaxis spiral and starts
// with alpha 1.
func NewSimulation(g *Graph, rng *rand.Rand) *Simulation {
	s := &Simulation{
		nodes:         g.Nodes,
		links:         g.Links,
		rng:           rng,
		forces:        make(map[string]Force),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		running:       true,
	}
	for i, n := range s.nodes {
		if n.X == 0 && n.Y == 0 {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
	return s
}

// SetForce installs f under name, replacing any force already there. A nil
// force removes the entry.
func (s *Simulation) SetForce(name string, f Force) {
	if f == nil {
		if _, ok := s.forces[name]; ok {
			delete(s.forces, name)
			for i, n := range s.order {
				if n == name {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := s.forces[name]; !ok {
		s.order = append(s.order, name)
	}
	f.Initialize(s.nodes, s.links, s.rng)
	s.forces[name] = f
}

// Force returns the force registered under name.
func (s *Simulation) Force(name string) (Force, bool) {
	f, ok := s.forces[name]
	return f, ok
}

// SetAlpha sets the current energy.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlphaTarget sets the energy alpha decays toward.
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = a }

// AlphaTarget returns the energy alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaMin sets the stop threshold.
func (s *Simulation) SetAlphaMin(a float64) { s.alphaMin = a }

// SetAlphaDecay sets the per-step decay rate.
func (s *Simulation) SetAlphaDecay(d float64) { s.alphaDecay = d }

// SetVelocityDecay sets the fraction of velocity lost each step.
func (s *Simulation) SetVelocityDecay(d float64) { s.velocityDecay = 1 - d }

// Restart resumes stepping.
func (s *Simulation) Restart() { s.running = true }

// Stop halts stepping; Step becomes a no-op until Restart.
func (s *Simulation) Stop() { s.running = false }

// Running reports whether Step will advance the simulation.
func (s *Simulation) Running() bool { return s.running }

// Step advances the simulation by n iterations and reports whether it is
// still running afterwards.
func (s *Simulation) Step(n int) bool {
	for i := 0; i < n && s.running; i++ {
		s.tick()
		if s.alpha < s.alphaMin {
			s.running = false
		}
	}
	return s.running
}

func (s *Simulation) tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, name := range s.order {
		s.forces[name].Apply(s.alpha)
	}
	for _, n := range s.nodes {
		if n.pinned {
			n.X, n.VX = n.fx, 0
			n.Y, n.VY = n.fy, 0
			continue
		}
		n.VX *= s.velocityDecay
		n.VY *= s.velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
}
