// Package geometry implements the coordinate-space math underneath the
// corkboard engine: content/client mapping under zoom, axis-aligned card
// boxes, anchor selection, and the quadratic curves used by the connector
// layer. Everything is a pure function of its inputs so it can be tested
// without any rendering backend.
package geometry

import (
	"math"

	"github.com/mune-tada/corkboard/pkg/model"
)

// Point is a location in either client or content space; which one is a
// matter of convention at the call site.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p minus q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned box in content coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the box center.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Right returns the x coordinate of the trailing vertical edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the trailing horizontal edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether p lies inside the box (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// AnchorPoint returns the edge midpoint for the given anchor. Auto is not a
// concrete edge; callers must resolve it with AutoAnchors first.
func (r Rect) AnchorPoint(a model.Anchor) Point {
	switch a {
	case model.AnchorTop:
		return Point{r.X + r.W/2, r.Y}
	case model.AnchorRight:
		return Point{r.Right(), r.Y + r.H/2}
	case model.AnchorBottom:
		return Point{r.X + r.W/2, r.Bottom()}
	case model.AnchorLeft:
		return Point{r.X, r.Y + r.H/2}
	}
	return r.Center()
}

// AutoAnchors picks the facing edge pair for a link with no explicit
// anchors. The dominant axis of displacement between box centers decides:
// a larger horizontal delta picks the left/right edges on the sides facing
// each other, a larger vertical delta picks top/bottom likewise. This must
// be recomputed whenever either box moves, since the dominant axis can flip.
func AutoAnchors(from, to Rect) (model.Anchor, model.Anchor) {
	d := to.Center().Sub(from.Center())
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return model.AnchorRight, model.AnchorLeft
		}
		return model.AnchorLeft, model.AnchorRight
	}
	if d.Y >= 0 {
		return model.AnchorBottom, model.AnchorTop
	}
	return model.AnchorTop, model.AnchorBottom
}

// Endpoints resolves the two attachment points for a link between the given
// boxes, honoring explicit anchors and auto-picking the rest. The resolved
// anchors are returned alongside the points so callers can render handles.
func Endpoints(from, to Rect, fromAnchor, toAnchor model.Anchor) (p1, p2 Point, a1, a2 model.Anchor) {
	autoFrom, autoTo := AutoAnchors(from, to)
	a1, a2 = fromAnchor, toAnchor
	if a1 == model.AnchorAuto {
		a1 = autoFrom
	}
	if a2 == model.AnchorAuto {
		a2 = autoTo
	}
	return from.AnchorPoint(a1), to.AnchorPoint(a2), a1, a2
}
