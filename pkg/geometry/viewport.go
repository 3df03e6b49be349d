package geometry

import "math"

// Zoom bounds. The factor is snapped to two decimal places so repeated
// wheel deltas produce stable display percentages.
const (
	MinZoom     = 0.25
	MaxZoom     = 3.0
	DefaultZoom = 1.0
)

// Viewport is the single source of truth for the scalar zoom factor applied
// to a scrollable content layer, plus the scroll offsets. All drag and
// connector math funnels pointer positions through ClientToContent so
// gestures stay correct at any zoom level.
type Viewport struct {
	zoom             float64
	ScrollX, ScrollY float64

	// OriginX/OriginY locate the content layer's origin in client space
	// (the box the pointer coordinates are relative to).
	OriginX, OriginY float64

	// onZoom, when set, is notified after every applied zoom change. Used
	// by the UI to refresh the zoom-percentage display.
	onZoom func(float64)
}

// NewViewport returns a viewport at the default zoom.
func NewViewport() *Viewport {
	return &Viewport{zoom: DefaultZoom}
}

// OnZoom registers the hook invoked after every applied zoom change.
func (v *Viewport) OnZoom(fn func(float64)) { v.onZoom = fn }

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	if v.zoom == 0 {
		return DefaultZoom
	}
	return v.zoom
}

// clampZoom clamps and snaps a raw factor to two decimal places.
func clampZoom(z float64) float64 {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	return math.Round(z*100) / 100
}

// ZoomBy applies a zoom delta anchored at the given client-space point: the
// content point under the anchor before the change stays under the same
// screen point after it. Returns false when the delta rounds to the already
// applied clamped value, in which case nothing changes and the hook does
// not fire.
func (v *Viewport) ZoomBy(delta float64, anchor Point) bool {
	old := v.Zoom()
	next := clampZoom(old + delta)
	if next == old {
		return false
	}

	// Content coordinate currently under the anchor.
	cx := (v.ScrollX + anchor.X) / old
	cy := (v.ScrollY + anchor.Y) / old

	v.zoom = next
	v.ScrollX = cx*next - anchor.X
	v.ScrollY = cy*next - anchor.Y

	if v.onZoom != nil {
		v.onZoom(next)
	}
	return true
}

// SetZoom sets an absolute zoom factor anchored at the given point.
func (v *Viewport) SetZoom(z float64, anchor Point) bool {
	return v.ZoomBy(clampZoom(z)-v.Zoom(), anchor)
}

// ClientToContent converts a pointer position to content-space coordinates:
// subtract the content-layer origin, add scroll, divide by zoom.
func (v *Viewport) ClientToContent(client Point) Point {
	z := v.Zoom()
	return Point{
		X: (client.X - v.OriginX + v.ScrollX) / z,
		Y: (client.Y - v.OriginY + v.ScrollY) / z,
	}
}

// ContentToClient is the inverse of ClientToContent.
func (v *Viewport) ContentToClient(content Point) Point {
	z := v.Zoom()
	return Point{
		X: content.X*z - v.ScrollX + v.OriginX,
		Y: content.Y*z - v.ScrollY + v.OriginY,
	}
}
