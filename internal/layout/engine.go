// Package layout implements the force layout engine: it turns the current
// result into a star graph, relaxes it with a force simulation, collapses it
// in compress mode and signals when compression is done.
package layout

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"insightvector/internal/insight"
	"insightvector/internal/logging"
	"insightvector/internal/schedule"

	"github.com/benbjohnson/clock"
)

// Mode selects the force tuning.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCompress
)

func (m Mode) String() string {
	if m == ModeCompress {
		return "compress"
	}
	return "normal"
}

// Tuning holds the constants that differ between modes.
type Tuning struct {
	LinkDistance  float64
	Charge        float64
	CollideRadius float64
}

// Config is the engine's full parameter set.
type Config struct {
	Width, Height float64

	Normal   Tuning
	Compress Tuning

	// Applied on top of Compress right after the graph is built, together
	// with an alpha kick, to pull everything into the hub.
	RecompressLinkDistance float64
	RecompressCharge       float64
	RecompressAlpha        float64

	CompressDuration time.Duration

	DragAlphaTarget float64
	VelocityDecay   float64
	AlphaMin        float64
	AlphaDecay      float64 // zero derives it from AlphaMin over 300 steps

	HubRadius  float64 // hit radius of the hub, layout units
	LeafRadius float64

	StepsPerSecond int
	Stars          int
	Seed           int64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Width:                  960,
		Height:                 640,
		Normal:                 Tuning{LinkDistance: 250, Charge: -1000, CollideRadius: 100},
		Compress:               Tuning{LinkDistance: 10, Charge: -5, CollideRadius: 0},
		RecompressLinkDistance: 0,
		RecompressCharge:       -2,
		RecompressAlpha:        0.5,
		CompressDuration:       2500 * time.Millisecond,
		DragAlphaTarget:        0.3,
		VelocityDecay:          DefaultVelocityDecay,
		AlphaMin:               DefaultAlphaMin,
		HubRadius:              24,
		LeafRadius:             14,
		StepsPerSecond:         60,
		Stars:                  100,
		Seed:                   1,
	}
}

func (c Config) tuning(m Mode) Tuning {
	if m == ModeCompress {
		return c.Compress
	}
	return c.Normal
}

// Engine errors.
var (
	ErrNotLoaded   = errors.New("no graph loaded")
	ErrUnknownNode = errors.New("unknown node")
	ErrNotDragging = errors.New("node is not being dragged")
)

const deadlineCompressed schedule.Key = "compressed"

// maxCatchUp bounds how many steps Advance runs after a long pause.
const maxCatchUp = 30

// Engine owns one graph and its simulation at a time. Load discards the
// previous graph, simulation and pending compression deadline. Like the
// controller, it is driven from a single event loop.
type Engine struct {
	cfg       Config
	deadlines *schedule.Deadlines

	graph   *Graph
	sim     *Simulation
	mode    Mode
	center  string
	stars   []Star
	dragged map[string]bool

	lastAdvance time.Time
	generation  uint64
}

// Star is a decorative background point in layout units.
type Star struct {
	X, Y       float64
	Brightness float64 // 0..0.4
}

// NewEngine creates an empty engine. A nil clock uses wall time.
func NewEngine(cfg Config, clk clock.Clock) *Engine {
	return &Engine{cfg: cfg, deadlines: schedule.New(clk), dragged: make(map[string]bool)}
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Configure replaces the configuration. It takes effect on the next Load.
func (e *Engine) Configure(cfg Config) { e.cfg = cfg }

// Load rebuilds the graph for a center label and its vectors. explored marks
// leaves that have been fetched anywhere in the session. In compress mode
// the completion deadline is (re)armed; any deadline from an earlier Load is
// cancelled first, so Poll reports completion once per compression entry.
func (e *Engine) Load(center string, vectors []insight.Vector, explored insight.Explored, mode Mode) {
	e.deadlines.CancelAll()
	if e.sim != nil {
		e.sim.Stop()
	}
	e.generation++

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	g := Build(center, vectors, explored)
	sim := NewSimulation(g, rng)
	sim.SetVelocityDecay(e.cfg.VelocityDecay)
	if e.cfg.AlphaMin > 0 {
		sim.SetAlphaMin(e.cfg.AlphaMin)
	}
	decay := e.cfg.AlphaDecay
	if decay <= 0 {
		floor := e.cfg.AlphaMin
		if floor <= 0 {
			floor = DefaultAlphaMin
		}
		decay = 1 - math.Pow(floor, 1.0/300)
	}
	sim.SetAlphaDecay(decay)

	t := e.cfg.tuning(mode)
	sim.SetForce("link", &LinkForce{Distance: t.LinkDistance})
	sim.SetForce("charge", &ManyBody{Strength: t.Charge})
	sim.SetForce("center", &Center{X: e.cfg.Width / 2, Y: e.cfg.Height / 2})
	sim.SetForce("collision", &Collide{Radius: t.CollideRadius})

	if mode == ModeCompress {
		sim.SetForce("link", &LinkForce{Distance: e.cfg.RecompressLinkDistance})
		sim.SetForce("charge", &ManyBody{Strength: e.cfg.RecompressCharge})
		sim.SetAlpha(e.cfg.RecompressAlpha)
		sim.Restart()
		e.deadlines.Arm(deadlineCompressed, e.cfg.CompressDuration)
	}

	e.graph, e.sim, e.mode, e.center = g, sim, mode, center
	e.stars = makeStars(rng, e.cfg)
	e.dragged = make(map[string]bool)
	e.lastAdvance = e.deadlines.Clock().Now()

	logging.Layout("load #%d %q: %d leaves, mode %s", e.generation, center, g.Leaves(), mode)
}

// Clear drops the graph and any pending compression deadline.
func (e *Engine) Clear() {
	e.deadlines.CancelAll()
	if e.sim != nil {
		e.sim.Stop()
	}
	e.graph, e.sim, e.stars = nil, nil, nil
	e.dragged = make(map[string]bool)
	e.generation++
}

// Loaded reports whether a graph is present.
func (e *Engine) Loaded() bool { return e.graph != nil }

// Mode returns the mode of the loaded graph.
func (e *Engine) Mode() Mode { return e.mode }

// Generation increments on every Load and Clear.
func (e *Engine) Generation() uint64 { return e.generation }

// Annotate refreshes explored flags without rebuilding.
func (e *Engine) Annotate(explored insight.Explored) {
	if e.graph != nil {
		e.graph.Annotate(explored)
	}
}

// Step runs n simulation iterations.
func (e *Engine) Step(n int) bool {
	if e.sim == nil {
		return false
	}
	return e.sim.Step(n)
}

// Advance runs as many iterations as wall time since the previous Advance
// calls for, bounded to avoid a burst after a stall.
func (e *Engine) Advance() int {
	if e.sim == nil {
		return 0
	}
	now := e.deadlines.Clock().Now()
	elapsed := now.Sub(e.lastAdvance)
	rate := e.cfg.StepsPerSecond
	if rate <= 0 {
		rate = 60
	}
	steps := int(elapsed * time.Duration(rate) / time.Second)
	if steps <= 0 {
		return 0
	}
	if steps > maxCatchUp {
		steps = maxCatchUp
	}
	e.lastAdvance = now
	if !e.sim.Running() {
		return 0
	}
	e.sim.Step(steps)
	return steps
}

// Poll reports whether the compression deadline has elapsed. It returns true
// at most once per compress-mode Load.
func (e *Engine) Poll() bool {
	for _, k := range e.deadlines.Due() {
		if k == deadlineCompressed {
			logging.Layout("compression #%d complete", e.generation)
			return true
		}
	}
	return false
}

// CompressionPending reports whether a completion signal is still due.
func (e *Engine) CompressionPending() bool {
	_, ok := e.deadlines.Pending(deadlineCompressed)
	return ok
}

// Running reports whether the simulation is still moving.
func (e *Engine) Running() bool { return e.sim != nil && e.sim.Running() }

// Alpha returns the simulation energy, zero when nothing is loaded.
func (e *Engine) Alpha() float64 {
	if e.sim == nil {
		return 0
	}
	return e.sim.Alpha()
}

// ---------------------------------------------------------------------------
// drag
// ---------------------------------------------------------------------------

// DragStart pins id at its current position and keeps the simulation warm.
func (e *Engine) DragStart(id string) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if len(e.dragged) == 0 {
		e.sim.SetAlphaTarget(e.cfg.DragAlphaTarget)
		e.sim.Restart()
	}
	e.dragged[id] = true
	n.pin(n.X, n.Y)
	return nil
}

// DragTo moves a dragged node.
func (e *Engine) DragTo(id string, x, y float64) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if !e.dragged[id] {
		return ErrNotDragging
	}
	n.pin(x, y)
	return nil
}

// DragEnd releases a dragged node and lets the layout settle.
func (e *Engine) DragEnd(id string) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if !e.dragged[id] {
		return ErrNotDragging
	}
	delete(e.dragged, id)
	n.unpin()
	if len(e.dragged) == 0 {
		e.sim.SetAlphaTarget(0)
	}
	return nil
}

func (e *Engine) node(id string) (*Node, error) {
	if e.graph == nil {
		return nil, ErrNotLoaded
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return nil, ErrUnknownNode
	}
	return n, nil
}

// NodeAt returns the topmost node whose hit circle, widened by slack,
// contains (x, y).
func (e *Engine) NodeAt(x, y, slack float64) (string, bool) {
	if e.graph == nil {
		return "", false
	}
	best, bestD := "", math.Inf(1)
	for _, n := range e.graph.Nodes {
		r := e.cfg.LeafRadius
		if n.Kind == KindHub {
			r = e.cfg.HubRadius
		}
		r += slack
		d := math.Hypot(n.X-x, n.Y-y)
		if d <= r && d < bestD {
			best, bestD = n.ID, d
		}
	}
	return best, best != ""
}

// ---------------------------------------------------------------------------
// snapshot
// ---------------------------------------------------------------------------

// NodeState is a read-only copy of one node.
type NodeState struct {
	ID       string
	Label    string
	Kind     Kind
	Weight   float64
	Explored bool
	Pinned   bool
	X, Y     float64
}

// LinkState is a read-only copy of one link's endpoints.
type LinkState struct {
	Source, Target string
	X1, Y1, X2, Y2 float64
}

// Frame is everything the renderer needs for one paint.
type Frame struct {
	Center  string
	Mode    Mode
	Alpha   float64
	Nodes   []NodeState
	Links   []LinkState
	Stars   []Star
	Width   float64
	Height  float64
	Running bool
}

// Snapshot copies the current positions.
func (e *Engine) Snapshot() Frame {
	f := Frame{Width: e.cfg.Width, Height: e.cfg.Height}
	if e.graph == nil {
		return f
	}
	f.Center, f.Mode, f.Alpha, f.Running = e.center, e.mode, e.sim.Alpha(), e.sim.Running()
	f.Nodes = make([]NodeState, len(e.graph.Nodes))
	for i, n := range e.graph.Nodes {
		f.Nodes[i] = NodeState{
			ID: n.ID, Label: n.Label, Kind: n.Kind, Weight: n.Weight,
			Explored: n.Explored, Pinned: n.pinned, X: n.X, Y: n.Y,
		}
	}
	f.Links = make([]LinkState, len(e.graph.Links))
	for i, l := range e.graph.Links {
		f.Links[i] = LinkState{
			Source: l.Source.ID, Target: l.Target.ID,
			X1: l.Source.X, Y1: l.Source.Y, X2: l.Target.X, Y2: l.Target.Y,
		}
	}
	f.Stars = append([]Star(nil), e.stars...)
	return f
}

func makeStars(rng *rand.Rand, cfg Config) []Star {
	stars := make([]Star, cfg.Stars)
	for i := range stars {
		stars[i] = Star{
			X:          (rng.Float64()-0.5)*cfg.Width*3 + cfg.Width/2,
			Y:          (rng.Float64()-0.5)*cfg.Height*3 + cfg.Height/2,
			Brightness: rng.Float64() * 0.4,
		}
	}
	return stars
}
