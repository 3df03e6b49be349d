// Package drag implements the freeform drag engine: a single-card gesture
// state machine with snap-to-edge alignment and per-frame exponential
// smoothing. The engine is pure state: the caller feeds it pointer
// positions in content space and drives animation frames; the engine never
// touches a rendering backend or a clock.
package drag

import (
	"math"

	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
)

// Config carries the empirical engine constants. They shape feel, not
// correctness, so they are tunable rather than hard invariants.
type Config struct {
	SnapThreshold float64 // max edge distance that still snaps
	RowTolerance  float64 // y-distance bucketing cards into one row
	SmoothRatio   float64 // fraction of remaining delta applied per frame
	Epsilon       float64 // settle distance: below this, jump to target
}

// DefaultConfig matches the tuned feel of the original board.
func DefaultConfig() Config {
	return Config{
		SnapThreshold: 8,
		RowTolerance:  80,
		SmoothRatio:   0.25,
		Epsilon:       0.5,
	}
}

// snapCandidate is one edge coordinate of another visible card.
type snapCandidate struct {
	axis  int // 0 = x, 1 = y
	value float64
}

// Gesture is the explicit context of one in-flight drag. It is owned by the
// engine and recreated per gesture; nothing about a drag lives in package
// state.
type Gesture struct {
	CardID string

	start      geometry.Point // card origin at pointer-down
	grab       geometry.Point // pointer offset within the card
	size       geometry.Point // dragged card dimensions, for trailing edges
	candidates []snapCandidate

	target  geometry.Point // raw or snapped target position
	current geometry.Point // animated position chasing target
	settled bool
}

// Engine is the freeform drag state machine: Idle <-> Dragging, one card at
// a time. Starting a drag while one is active simply doesn't start.
type Engine struct {
	cfg     Config
	gesture *Gesture
	zTop    int
	zOrder  map[string]int
}

// NewEngine returns an idle engine.
func NewEngine(cfg Config) *Engine {
	if cfg.SmoothRatio <= 0 || cfg.SmoothRatio > 1 {
		cfg.SmoothRatio = DefaultConfig().SmoothRatio
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultConfig().Epsilon
	}
	return &Engine{cfg: cfg, zOrder: map[string]int{}}
}

// Dragging reports whether a gesture is active.
func (e *Engine) Dragging() bool { return e.gesture != nil }

// CardID returns the dragged card's id, or "" when idle.
func (e *Engine) CardID() string {
	if e.gesture == nil {
		return ""
	}
	return e.gesture.CardID
}

// ZIndex returns the z-order assigned to a card, 0 when never raised.
func (e *Engine) ZIndex(cardID string) int { return e.zOrder[cardID] }

// Start begins a drag of cardID grabbed at pointer (content space).
// layout maps every visible card to its current box; the dragged card must
// be present. Snap candidates are computed once here from the edges of all
// other cards, on both axes. Returns false if a drag is already active or
// the card is unknown.
func (e *Engine) Start(cardID string, pointer geometry.Point, layout map[string]geometry.Rect) bool {
	if e.gesture != nil {
		return false
	}
	box, ok := layout[cardID]
	if !ok {
		return false
	}

	g := &Gesture{
		CardID:  cardID,
		start:   geometry.Point{X: box.X, Y: box.Y},
		grab:    pointer.Sub(geometry.Point{X: box.X, Y: box.Y}),
		size:    geometry.Point{X: box.W, Y: box.H},
		target:  geometry.Point{X: box.X, Y: box.Y},
		current: geometry.Point{X: box.X, Y: box.Y},
		settled: true,
	}
	for id, r := range layout {
		if id == cardID {
			continue
		}
		g.candidates = append(g.candidates,
			snapCandidate{axis: 0, value: r.X},
			snapCandidate{axis: 0, value: r.Right()},
			snapCandidate{axis: 1, value: r.Y},
			snapCandidate{axis: 1, value: r.Bottom()},
		)
	}

	// Raise above everything else, monotonically.
	e.zTop++
	e.zOrder[cardID] = e.zTop
	e.gesture = g
	return true
}

// Move updates the drag target from a new pointer position. With bypass set
// (modifier key held) the raw position is used directly; otherwise each
// axis snaps independently to the nearest candidate edge within threshold,
// checked against both the leading and trailing edge of the dragged card.
func (e *Engine) Move(pointer geometry.Point, bypass bool) {
	g := e.gesture
	if g == nil {
		return
	}
	raw := pointer.Sub(g.grab)
	if !bypass {
		raw.X = e.snapAxis(raw.X, g.size.X, 0, g.candidates)
		raw.Y = e.snapAxis(raw.Y, g.size.Y, 1, g.candidates)
	}
	g.target = raw
	g.settled = false
}

// snapAxis snaps one axis position. pos is the leading edge; pos+extent the
// trailing one. The nearest candidate within threshold wins; ties break to
// the first found. The candidate set is fixed per gesture so re-resolving
// every move is cheap and stable enough.
func (e *Engine) snapAxis(pos, extent float64, axis int, candidates []snapCandidate) float64 {
	best := math.Inf(1)
	snapped := pos
	for _, c := range candidates {
		if c.axis != axis {
			continue
		}
		// Leading edge against candidate edge.
		if d := math.Abs(c.value - pos); d <= e.cfg.SnapThreshold && d < best {
			best = d
			snapped = c.value
		}
		// Trailing edge against candidate edge.
		if d := math.Abs(c.value - (pos + extent)); d <= e.cfg.SnapThreshold && d < best {
			best = d
			snapped = c.value - extent
		}
	}
	return snapped
}

// Step advances the animated position by one frame of exponential
// smoothing toward the target. Returns true while more frames are needed;
// once within epsilon the position snaps exactly to target and the render
// loop can stop scheduling frames.
func (e *Engine) Step() bool {
	g := e.gesture
	if g == nil || g.settled {
		return false
	}
	dx := g.target.X - g.current.X
	dy := g.target.Y - g.current.Y
	if math.Hypot(dx, dy) <= e.cfg.Epsilon {
		g.current = g.target
		g.settled = true
		return false
	}
	g.current.X += dx * e.cfg.SmoothRatio
	g.current.Y += dy * e.cfg.SmoothRatio
	return true
}

// Position returns the current animated position of the dragged card.
func (e *Engine) Position() (geometry.Point, bool) {
	if e.gesture == nil {
		return geometry.Point{}, false
	}
	return e.gesture.current, true
}

// Target returns the raw/snapped target the animation is chasing.
func (e *Engine) Target() (geometry.Point, bool) {
	if e.gesture == nil {
		return geometry.Point{}, false
	}
	return e.gesture.target, true
}

// End finishes the gesture and returns the final committed position. Any
// remaining animation is cut short: the commit uses the target, not the
// interpolated position.
func (e *Engine) End() (cardID string, pos model.Position, ok bool) {
	g := e.gesture
	if g == nil {
		return "", model.Position{}, false
	}
	e.gesture = nil
	return g.CardID, model.Position{X: g.target.X, Y: g.target.Y}, true
}

// Cancel abandons the gesture without committing. Destroying the engine
// mid-drag must leave no stuck animation state, which this guarantees.
func (e *Engine) Cancel() {
	e.gesture = nil
}
