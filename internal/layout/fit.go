package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds returns the bounding box of pos. It is the zero box for no points.
func Bounds(pos []r2.Vec) r2.Box {
	if len(pos) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: pos[0], Max: pos[0]}
	for _, p := range pos[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// Fit scales pos uniformly and translates it so every point lies inside
// [padding, width-padding] x [padding, height-padding], centered on the canvas.
// A single point or a layout without extent is moved to the canvas center.
func Fit(pos []r2.Vec, width, height, padding float64) {
	if len(pos) == 0 {
		return
	}
	center := r2.Vec{X: width / 2, Y: height / 2}
	availW := math.Max(width-2*padding, 0)
	availH := math.Max(height-2*padding, 0)

	b := Bounds(pos)
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	mid := r2.Scale(0.5, r2.Add(b.Min, b.Max))

	scale := math.Inf(1)
	if dx > 0 {
		scale = math.Min(scale, availW/dx)
	}
	if dy > 0 {
		scale = math.Min(scale, availH/dy)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}

	for i, p := range pos {
		q := r2.Add(center, r2.Scale(scale, r2.Sub(p, mid)))
		// Rounding can push the extreme points a hair past the edge.
		q.X = math.Min(math.Max(q.X, padding), width-padding)
		q.Y = math.Min(math.Max(q.Y, padding), height-padding)
		pos[i] = q
	}
}
