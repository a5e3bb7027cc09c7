package layout

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
)

// ForceParams tunes the simulation. Zero values take the defaults.
type ForceParams struct {
	// Charge is the many-body strength, negative values repel.
	Charge       float64 `json:"charge,omitempty" yaml:"charge,omitempty" mapstructure:"charge"`
	LinkDistance float64 `json:"linkDistance,omitempty" yaml:"linkDistance,omitempty" mapstructure:"linkDistance"`
	// Collide is the strength of the collision force, a negative value disables it.
	Collide       float64 `json:"collide,omitempty" yaml:"collide,omitempty" mapstructure:"collide"`
	VelocityDecay float64 `json:"velocityDecay,omitempty" yaml:"velocityDecay,omitempty" mapstructure:"velocityDecay"`
	AlphaMin      float64 `json:"alphaMin,omitempty" yaml:"alphaMin,omitempty" mapstructure:"alphaMin"`
}

const (
	defaultCharge        = -200
	defaultLinkDistance  = 80
	defaultCollide       = 0.7
	defaultVelocityDecay = 0.4
	defaultAlphaMin      = 0.001
	defaultRadius        = 8

	// ReheatAlpha is the alpha target while a node is being dragged.
	ReheatAlpha = 0.3
)

func (p ForceParams) withDefaults() ForceParams {
	if p.Charge == 0 {
		p.Charge = defaultCharge
	}
	if p.LinkDistance <= 0 {
		p.LinkDistance = defaultLinkDistance
	}
	if p.Collide < 0 {
		p.Collide = 0
	} else if p.Collide == 0 {
		p.Collide = defaultCollide
	}
	if p.VelocityDecay <= 0 || p.VelocityDecay >= 1 {
		p.VelocityDecay = defaultVelocityDecay
	}
	if p.AlphaMin <= 0 {
		p.AlphaMin = defaultAlphaMin
	}
	return p
}

type link struct {
	s, t     int
	strength float64
	bias     float64
}

// Simulation is a damped force simulation: many-body repulsion between all
// pairs, springs along edges, collision by node radius and a centering shift.
// It never starts goroutines, the owner drives it with Tick.
type Simulation struct {
	pos    []r2.Vec
	vel    []r2.Vec
	radius []float64
	pinned []bool
	pin    []r2.Vec
	fixed  []bool
	links  []link
	center r2.Vec
	params ForceParams

	alpha       float64
	alphaTarget float64
	alphaDecay  float64

	// Constrain, if set, projects each free node back onto an allowed position
	// after every step.
	Constrain func(i int, p r2.Vec) r2.Vec

	rng       *rand.Rand
	listeners map[int]func(*Simulation)
	nextID    int
	stopped   bool
}

// NewSimulation seeds a simulation from attrs.Pos. Nodes sharing a position are
// spread on a phyllotaxis spiral around the canvas center. Fixed nodes are pinned.
func NewSimulation(g *graph.Graph, attrs *graph.Attrs, cfg Config) *Simulation {
	cfg = cfg.WithDefaults()
	n := len(g.Nodes)
	s := &Simulation{
		pos:       make([]r2.Vec, n),
		vel:       make([]r2.Vec, n),
		radius:    make([]float64, n),
		pinned:    make([]bool, n),
		pin:       make([]r2.Vec, n),
		fixed:     make([]bool, n),
		center:    r2.Vec{X: cfg.Width / 2, Y: cfg.Height / 2},
		params:    cfg.Force,
		alpha:     1,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		listeners: map[int]func(*Simulation){},
	}
	s.alphaDecay = 1 - math.Pow(s.params.AlphaMin, 1/float64(DefaultIterations))

	seeded := distinctPositions(attrs.Pos)
	for i := 0; i < n; i++ {
		if seeded {
			s.pos[i] = attrs.Pos[i]
		} else {
			r := 10 * math.Sqrt(0.5+float64(i))
			theta := float64(i) * math.Pi * (3 - math.Sqrt(5))
			s.pos[i] = r2.Vec{X: s.center.X + r*math.Cos(theta), Y: s.center.Y + r*math.Sin(theta)}
		}
		s.radius[i] = defaultRadius
		if i < len(attrs.Radius) && attrs.Radius[i] > 0 {
			s.radius[i] = attrs.Radius[i]
		}
		if f := g.Nodes[i].Fixed; f != nil {
			s.fixed[i] = true
			s.pinned[i] = true
			s.pin[i] = f.Vec()
			s.pos[i] = s.pin[i]
		}
	}

	count := make([]int, n)
	for e := range g.Edges {
		if g.Src[e] != g.Dst[e] {
			count[g.Src[e]]++
			count[g.Dst[e]]++
		}
	}
	for e := range g.Edges {
		a, b := g.Src[e], g.Dst[e]
		if a == b {
			continue
		}
		s.links = append(s.links, link{
			s:        a,
			t:        b,
			strength: 1 / float64(min(count[a], count[b])),
			bias:     float64(count[a]) / float64(count[a]+count[b]),
		})
	}

	return s
}

func distinctPositions(pos []r2.Vec) bool {
	if len(pos) < 2 {
		return len(pos) == 1 && pos[0] != (r2.Vec{})
	}
	for _, p := range pos[1:] {
		if p != pos[0] {
			return true
		}
	}
	return false
}

// Alpha is the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Running reports whether the simulation has not cooled below AlphaMin.
func (s *Simulation) Running() bool {
	return !s.stopped && (s.alpha >= s.params.AlphaMin || s.alphaTarget > 0)
}

// Positions returns the live position slice, callers must not modify it.
func (s *Simulation) Positions() []r2.Vec { return s.pos }

// CopyTo writes the positions into attrs.
func (s *Simulation) CopyTo(attrs *graph.Attrs) {
	copy(attrs.Pos, s.pos)
}

// OnTick registers fn to run after every step. The returned func removes it.
func (s *Simulation) OnTick(fn func(*Simulation)) (off func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Pin holds node i at p until Unpin.
func (s *Simulation) Pin(i int, p r2.Vec) {
	s.pinned[i] = true
	s.pin[i] = p
	s.pos[i] = p
	s.vel[i] = r2.Vec{}
}

// Unpin releases node i unless it was fixed by the caller. It reports whether the
// node is free.
func (s *Simulation) Unpin(i int) bool {
	if s.fixed[i] {
		return false
	}
	s.pinned[i] = false
	return true
}

// Reheat warms the simulation up for an interaction, Cool lets it settle again.
func (s *Simulation) Reheat() {
	s.alphaTarget = ReheatAlpha
	if s.alpha < ReheatAlpha {
		s.alpha = ReheatAlpha
	}
}

func (s *Simulation) Cool() {
	s.alphaTarget = 0
}

// Stop ends the simulation and drops every listener. Tick is a no-op afterwards.
func (s *Simulation) Stop() {
	s.stopped = true
	clear(s.listeners)
}

// Run ticks the simulation n times without notifying listeners.
func (s *Simulation) Run(n int) {
	for i := 0; i < n && !s.stopped; i++ {
		s.step()
	}
}

// Tick advances the simulation one step and notifies listeners. It reports whether
// the simulation is still running.
func (s *Simulation) Tick() bool {
	if s.stopped {
		return false
	}
	s.step()
	for _, fn := range s.listeners {
		fn(s)
	}
	return s.Running()
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	s.applyLinks()
	s.applyCharge()
	if s.params.Collide > 0 {
		s.applyCollide()
	}

	for i := range s.pos {
		if s.pinned[i] {
			s.pos[i] = s.pin[i]
			s.vel[i] = r2.Vec{}
			continue
		}
		s.vel[i] = r2.Scale(1-s.params.VelocityDecay, s.vel[i])
		s.pos[i] = r2.Add(s.pos[i], s.vel[i])
		if s.Constrain != nil {
			s.pos[i] = s.Constrain(i, s.pos[i])
		}
	}

	s.applyCenter()
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		d := r2.Sub(r2.Add(s.pos[l.t], s.vel[l.t]), r2.Add(s.pos[l.s], s.vel[l.s]))
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		dist := r2.Norm(d)
		k := (dist - s.params.LinkDistance) / dist * s.alpha * l.strength
		d = r2.Scale(k, d)
		s.vel[l.t] = r2.Sub(s.vel[l.t], r2.Scale(l.bias, d))
		s.vel[l.s] = r2.Add(s.vel[l.s], r2.Scale(1-l.bias, d))
	}
}

func (s *Simulation) applyCharge() {
	const distanceMin2 = 1
	for i := range s.pos {
		for j := i + 1; j < len(s.pos); j++ {
			d := r2.Sub(s.pos[j], s.pos[i])
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			l2 := r2.Norm2(d)
			if l2 < distanceMin2 {
				l2 = math.Sqrt(distanceMin2 * l2)
			}
			w := s.params.Charge * s.alpha / l2
			s.vel[i] = r2.Add(s.vel[i], r2.Scale(w, d))
			s.vel[j] = r2.Sub(s.vel[j], r2.Scale(w, d))
		}
	}
}

func (s *Simulation) applyCollide() {
	for i := range s.pos {
		for j := i + 1; j < len(s.pos); j++ {
			r := s.radius[i] + s.radius[j]
			d := r2.Sub(r2.Add(s.pos[j], s.vel[j]), r2.Add(s.pos[i], s.vel[i]))
			l2 := r2.Norm2(d)
			if l2 >= r*r {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			l := r2.Norm(d)
			k := (r - l) / l * s.params.Collide
			ri2, rj2 := s.radius[i]*s.radius[i], s.radius[j]*s.radius[j]
			share := rj2 / (ri2 + rj2)
			d = r2.Scale(k, d)
			s.vel[i] = r2.Sub(s.vel[i], r2.Scale(share, d))
			s.vel[j] = r2.Add(s.vel[j], r2.Scale(1-share, d))
		}
	}
}

// applyCenter shifts the free nodes so the mean position is the canvas center.
func (s *Simulation) applyCenter() {
	var sum r2.Vec
	free := 0
	for i, p := range s.pos {
		if s.pinned[i] {
			continue
		}
		sum = r2.Add(sum, p)
		free++
	}
	if free == 0 || s.Constrain != nil {
		return
	}
	shift := r2.Sub(s.center, r2.Scale(1/float64(free), sum))
	for i := range s.pos {
		if !s.pinned[i] {
			s.pos[i] = r2.Add(s.pos[i], shift)
		}
	}
}

type forceLayout struct{}

func (forceLayout) Mode() Mode { return Force }

// Apply runs a fresh simulation for cfg.Iterations ticks and freezes the result.
func (forceLayout) Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	cfg = cfg.WithDefaults()
	sim := NewSimulation(g, attrs, cfg)
	sim.Run(cfg.Iterations)
	sim.CopyTo(attrs)
	finish(g, attrs, cfg)
}
