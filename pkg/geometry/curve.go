package geometry

import "math"

// Label layout constants for link labels. The label is offset perpendicular
// to the link direction so it never sits directly on the line; its box
// grows with text length within bounds.
const (
	LabelOffset   = 12.0
	LabelMinWidth = 40.0
	LabelMaxWidth = 220.0
	LabelHeight   = 22.0
	labelPerChar  = 8.0
)

// Curve is the quadratic bezier drawn for one link. The control point bows
// the curve perpendicular to the chord so parallel links don't fuse into a
// single straight band.
type Curve struct {
	Start, Control, End Point
}

// curveBow is the perpendicular offset of the control point from the chord
// midpoint, scaled down for short links.
const curveBow = 24.0

// LinkCurve builds the curve between two resolved endpoints.
func LinkCurve(start, end Point) Curve {
	mid := Point{(start.X + end.X) / 2, (start.Y + end.Y) / 2}
	nx, ny := perpendicular(start, end)
	bow := curveBow
	if d := start.Dist(end); d < 4*curveBow {
		bow = d / 4
	}
	return Curve{
		Start:   start,
		Control: Point{mid.X + nx*bow, mid.Y + ny*bow},
		End:     end,
	}
}

// PointAt evaluates the curve at t in [0,1].
func (c Curve) PointAt(t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*c.Start.X + 2*u*t*c.Control.X + t*t*c.End.X,
		Y: u*u*c.Start.Y + 2*u*t*c.Control.Y + t*t*c.End.Y,
	}
}

// Midpoint returns the curve point at t=0.5.
func (c Curve) Midpoint() Point { return c.PointAt(0.5) }

// curveSamples balances hit-test precision against per-frame cost.
const curveSamples = 24

// Distance returns the approximate distance from p to the curve, sampled at
// a fixed resolution.
func (c Curve) Distance(p Point) float64 {
	best := math.Inf(1)
	for i := 0; i <= curveSamples; i++ {
		d := p.Dist(c.PointAt(float64(i) / curveSamples))
		if d < best {
			best = d
		}
	}
	return best
}

// LabelRect returns the label box for the given text length, centered on a
// point offset perpendicular from the curve midpoint.
func (c Curve) LabelRect(textLen int) Rect {
	w := LabelMinWidth + float64(textLen)*labelPerChar
	if w > LabelMaxWidth {
		w = LabelMaxWidth
	}
	nx, ny := perpendicular(c.Start, c.End)
	mid := c.Midpoint()
	cx := mid.X + nx*LabelOffset
	cy := mid.Y + ny*LabelOffset
	return Rect{X: cx - w/2, Y: cy - LabelHeight/2, W: w, H: LabelHeight}
}

// perpendicular returns the unit normal of the segment from a to b. A
// degenerate segment yields an upward normal so labels still detach from
// the point.
func perpendicular(a, b Point) (float64, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, -1
	}
	return -dy / length, dx / length
}
