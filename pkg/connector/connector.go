// Package connector implements the link-layer interaction state: creating
// links by dragging between card handles, reconnecting one endpoint of an
// existing link, exclusive selection, and inline label editing. Like the
// drag engine it is pure state driven by pointer positions in content
// space; rendering and event plumbing live in pkg/ui.
package connector

import (
	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
)

// Config carries the interaction radii in content units.
type Config struct {
	GrabRadius   float64 // distance from a curve endpoint that starts a reconnect
	HandleRadius float64 // distance from a handle that makes it a drop target
	CurveHit     float64 // distance from a curve that counts as clicking it
}

// DefaultConfig matches the tuned feel of the original board.
func DefaultConfig() Config {
	return Config{GrabRadius: 14, HandleRadius: 16, CurveHit: 8}
}

// Handle is one of the four directional connection handles on a card.
type Handle struct {
	CardID string
	Anchor model.Anchor
	Pos    geometry.Point
}

// Handles returns the four edge-midpoint handles for every card in the
// layout.
func Handles(layout map[string]geometry.Rect) []Handle {
	anchors := [4]model.Anchor{model.AnchorTop, model.AnchorRight, model.AnchorBottom, model.AnchorLeft}
	out := make([]Handle, 0, len(layout)*4)
	for id, r := range layout {
		for _, a := range anchors {
			out = append(out, Handle{CardID: id, Anchor: a, Pos: r.AnchorPoint(a)})
		}
	}
	return out
}

// RenderedLink is a link with its endpoints already resolved to content
// points, as produced by the render pass. The connector layer hit-tests
// against these rather than recomputing geometry itself.
type RenderedLink struct {
	ID         string
	FromCard   string
	ToCard     string
	FromAnchor model.Anchor // stored anchor, may be auto
	ToAnchor   model.Anchor
	From, To   geometry.Point
}

// Curve returns the drawn curve for the rendered link.
func (r RenderedLink) Curve() geometry.Curve {
	return geometry.LinkCurve(r.From, r.To)
}

// End identifies one endpoint of a link.
type End int

const (
	EndFrom End = iota
	EndTo
)

type gestureKind int

const (
	kindConnect gestureKind = iota
	kindReconnect
)

// Gesture is the explicit context of one in-flight connect or reconnect.
type Gesture struct {
	kind gestureKind

	// Connect: the handle the rubber band starts from.
	sourceCard   string
	sourceAnchor model.Anchor

	// Reconnect: the link being re-routed and which of its ends moves.
	linkID     string
	movingEnd  End
	fixedCard  string
	fixedPoint geometry.Point

	start        geometry.Point // source handle position for the rubber band
	pointer      geometry.Point
	targetCard   string
	targetAnchor model.Anchor
}

// Pointer returns the current rubber-band endpoint.
func (g *Gesture) Pointer() geometry.Point { return g.pointer }

// RubberBand returns the temporary curve drawn while the gesture is live.
func (g *Gesture) RubberBand() geometry.Curve {
	if g.kind == kindReconnect {
		if g.movingEnd == EndFrom {
			return geometry.LinkCurve(g.pointer, g.fixedPoint)
		}
		return geometry.LinkCurve(g.fixedPoint, g.pointer)
	}
	return geometry.LinkCurve(g.start, g.pointer)
}

// Target returns the currently highlighted drop target, if any.
func (g *Gesture) Target() (cardID string, anchor model.Anchor, ok bool) {
	return g.targetCard, g.targetAnchor, g.targetCard != ""
}

// NewLink is the outcome of a completed creation gesture.
type NewLink struct {
	FromCard   string
	FromAnchor model.Anchor
	ToCard     string
	ToAnchor   model.Anchor
}

// Reconnect is the outcome of a completed reconnection gesture: only the
// moving endpoint changes, the other stays fixed with its existing anchor.
type Reconnect struct {
	LinkID string
	End    End
	Card   string
	Anchor model.Anchor
}

// Layer holds all connector-layer interaction state for one board instance.
// No module-level globals: multiple boards get independent layers.
type Layer struct {
	cfg      Config
	visible  bool
	selected string // selected link id, "" = none
	editing  string // link id whose label is being edited inline
	gesture  *Gesture
}

// NewLayer returns a visible, idle layer.
func NewLayer(cfg Config) *Layer {
	if cfg.GrabRadius <= 0 {
		cfg = DefaultConfig()
	}
	return &Layer{cfg: cfg, visible: true}
}

// Visible reports whether the layer is shown.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible toggles the whole layer. Hiding must also cancel any
// in-progress gesture and clear selection so no orphaned interaction state
// survives a mode switch.
func (l *Layer) SetVisible(v bool) {
	l.visible = v
	if !v {
		l.gesture = nil
		l.selected = ""
		l.editing = ""
	}
}

// Gesture returns the in-flight gesture, or nil when idle.
func (l *Layer) Gesture() *Gesture { return l.gesture }

// Connecting reports whether any connect/reconnect gesture is active.
func (l *Layer) Connecting() bool { return l.gesture != nil }

// Selected returns the selected link id, or "".
func (l *Layer) Selected() string { return l.selected }

// Select marks a link as the exclusive selection. Callers clear card
// selection in the same turn; the layer only owns link selection.
func (l *Layer) Select(linkID string) {
	if !l.visible {
		return
	}
	l.selected = linkID
}

// ClearSelection drops the selection and any in-progress label edit.
func (l *Layer) ClearSelection() {
	l.selected = ""
	l.editing = ""
}

// Editing returns the link id whose label is being edited, or "".
func (l *Layer) Editing() string { return l.editing }

// StartEdit begins inline label editing for a link.
func (l *Layer) StartEdit(linkID string) {
	if !l.visible {
		return
	}
	l.selected = linkID
	l.editing = linkID
}

// FinishEdit ends inline editing (commit and revert are the caller's call;
// the layer only tracks the mode).
func (l *Layer) FinishEdit() { l.editing = "" }

// LinkAt hit-tests the pointer against rendered curves and their label
// boxes, returning the closest hit or "".
func (l *Layer) LinkAt(p geometry.Point, rendered []RenderedLink, labelLen func(string) int) string {
	if !l.visible {
		return ""
	}
	best := ""
	bestDist := l.cfg.CurveHit
	for _, r := range rendered {
		c := r.Curve()
		// An unlabeled link has no visible label box to click.
		if labelLen != nil {
			if n := labelLen(r.ID); n > 0 && c.LabelRect(n).Contains(p) {
				return r.ID
			}
		}
		if d := c.Distance(p); d <= bestDist {
			best = r.ID
			bestDist = d
		}
	}
	return best
}

// BeginConnect starts a creation gesture from a card's handle. Refused
// while hidden or while another gesture is active.
func (l *Layer) BeginConnect(h Handle) bool {
	if !l.visible || l.gesture != nil {
		return false
	}
	l.gesture = &Gesture{
		kind:         kindConnect,
		sourceCard:   h.CardID,
		sourceAnchor: h.Anchor,
		start:        h.Pos,
		pointer:      h.Pos,
	}
	return true
}

// BeginReconnect starts a reconnection if the pointer is within GrabRadius
// of either endpoint of a rendered link. The other endpoint stays fixed.
func (l *Layer) BeginReconnect(p geometry.Point, rendered []RenderedLink) bool {
	if !l.visible || l.gesture != nil {
		return false
	}
	for _, r := range rendered {
		var end End
		var fixedCard string
		var fixed geometry.Point
		switch {
		case p.Dist(r.From) <= l.cfg.GrabRadius:
			end, fixed, fixedCard = EndFrom, r.To, r.ToCard
		case p.Dist(r.To) <= l.cfg.GrabRadius:
			end, fixed, fixedCard = EndTo, r.From, r.FromCard
		default:
			continue
		}
		l.gesture = &Gesture{
			kind:       kindReconnect,
			linkID:     r.ID,
			movingEnd:  end,
			fixedCard:  fixedCard,
			fixedPoint: fixed,
			pointer:    p,
		}
		l.selected = r.ID
		return true
	}
	return false
}

// PointerMove advances the rubber band and refreshes the highlighted drop
// target: the nearest handle within HandleRadius on a valid card. For a
// creation gesture the source card itself is never a valid target.
func (l *Layer) PointerMove(p geometry.Point, handles []Handle) {
	g := l.gesture
	if g == nil {
		return
	}
	g.pointer = p
	g.targetCard = ""
	g.targetAnchor = model.AnchorAuto

	best := l.cfg.HandleRadius
	for _, h := range handles {
		if g.kind == kindConnect && h.CardID == g.sourceCard {
			continue
		}
		if d := p.Dist(h.Pos); d <= best {
			best = d
			g.targetCard = h.CardID
			g.targetAnchor = h.Anchor
		}
	}
}

// Release completes the gesture. For creation it returns a NewLink with
// both anchors pinned to the handles used; for reconnection a Reconnect
// updating just the moving endpoint. Releasing over empty space (or, for a
// reconnect, over the moving end's own card) cancels with no result:
// transient gesture inconsistency is resolved silently, never an error.
func (l *Layer) Release() (NewLink, Reconnect, bool) {
	g := l.gesture
	l.gesture = nil
	if g == nil || g.targetCard == "" {
		return NewLink{}, Reconnect{}, false
	}
	if g.kind == kindConnect {
		return NewLink{
			FromCard:   g.sourceCard,
			FromAnchor: g.sourceAnchor,
			ToCard:     g.targetCard,
			ToAnchor:   g.targetAnchor,
		}, Reconnect{}, true
	}
	// Dropping a reconnect onto the fixed endpoint's card re-routes the
	// link onto itself; treat it as a no-op cancellation.
	if g.targetCard == g.fixedCard {
		return NewLink{}, Reconnect{}, false
	}
	return NewLink{}, Reconnect{
		LinkID: g.linkID,
		End:    g.movingEnd,
		Card:   g.targetCard,
		Anchor: g.targetAnchor,
	}, true
}

// Cancel abandons any in-flight gesture.
func (l *Layer) Cancel() { l.gesture = nil }
