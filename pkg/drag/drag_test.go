package drag

import (
	"math"
	"testing"

	"github.com/mune-tada/corkboard/pkg/geometry"
)

func testLayout() map[string]geometry.Rect {
	return map[string]geometry.Rect{
		"a": {X: 0, Y: 0, W: 100, H: 60},
		"b": {X: 300, Y: 0, W: 100, H: 60},
		"c": {X: 0, Y: 200, W: 100, H: 60},
	}
}

func TestStartWhileDraggingIsIgnored(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if !e.Start("a", geometry.Point{X: 10, Y: 10}, testLayout()) {
		t.Fatal("first start should succeed")
	}
	if e.Start("b", geometry.Point{X: 310, Y: 10}, testLayout()) {
		t.Error("second start during active drag should be refused")
	}
	if e.CardID() != "a" {
		t.Errorf("dragging %q, want a", e.CardID())
	}
}

func TestSnapToNeighborEdge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	layout := testLayout()
	// Grab card a at its origin corner offset (10,10).
	if !e.Start("a", geometry.Point{X: 10, Y: 10}, layout) {
		t.Fatal("start failed")
	}

	// Drag so a's left edge lands 7px left of b's right edge (x=400).
	e.Move(geometry.Point{X: 403, Y: 10}, false)
	target, _ := e.Target()
	if target.X != 400 {
		t.Errorf("target.X = %v, want snapped 400", target.X)
	}
	if target.Y != 0 {
		t.Errorf("target.Y = %v, want 0 (y candidates coincide)", target.Y)
	}
}

func TestSnapBypassWithModifier(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if !e.Start("a", geometry.Point{X: 10, Y: 10}, testLayout()) {
		t.Fatal("start failed")
	}
	e.Move(geometry.Point{X: 403, Y: 10}, true)
	target, _ := e.Target()
	if target.X != 393 {
		t.Errorf("target.X = %v, want raw 393 with bypass", target.X)
	}
}

func TestSnapTrailingEdge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	layout := testLayout()
	if !e.Start("a", geometry.Point{X: 0, Y: 0}, layout) {
		t.Fatal("start failed")
	}
	// a's right edge (x+100) within 5px of b's left edge (300).
	e.Move(geometry.Point{X: 195, Y: 0}, false)
	target, _ := e.Target()
	if target.X != 200 {
		t.Errorf("target.X = %v, want 200 (right edge flush with b)", target.X)
	}
}

func TestBeyondThresholdNoSnap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if !e.Start("a", geometry.Point{X: 0, Y: 0}, testLayout()) {
		t.Fatal("start failed")
	}
	e.Move(geometry.Point{X: 150, Y: 100}, false)
	target, _ := e.Target()
	if target.X != 150 || target.Y != 100 {
		t.Errorf("target = %v, want raw {150 100}", target)
	}
}

func TestSmoothingConvergesAndSettles(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if !e.Start("a", geometry.Point{X: 0, Y: 0}, testLayout()) {
		t.Fatal("start failed")
	}
	e.Move(geometry.Point{X: 150, Y: 90}, true)

	frames := 0
	for e.Step() {
		frames++
		if frames > 200 {
			t.Fatal("animation did not settle")
		}
	}
	pos, _ := e.Position()
	if pos.X != 150 || pos.Y != 90 {
		t.Errorf("settled at %v, want exact {150 90}", pos)
	}
	// Settled: no more frames get scheduled.
	if e.Step() {
		t.Error("Step after settling should report no more work")
	}
	if frames < 5 {
		t.Errorf("settled in %d frames; smoothing should take several", frames)
	}
}

func TestSmoothingIsExponential(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	if !e.Start("a", geometry.Point{X: 0, Y: 0}, testLayout()) {
		t.Fatal("start failed")
	}
	e.Move(geometry.Point{X: 100, Y: 0}, true)

	e.Step()
	pos, _ := e.Position()
	if math.Abs(pos.X-100*cfg.SmoothRatio) > 1e-9 {
		t.Errorf("first frame at %v, want ratio %v of the way", pos.X, cfg.SmoothRatio)
	}
}

func TestEndCommitsTargetNotInterpolated(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if !e.Start("a", geometry.Point{X: 0, Y: 0}, testLayout()) {
		t.Fatal("start failed")
	}
	e.Move(geometry.Point{X: 500, Y: 500}, true)
	e.Step() // partway there

	id, pos, ok := e.End()
	if !ok || id != "a" {
		t.Fatalf("End = %q,%v", id, ok)
	}
	if pos.X != 500 || pos.Y != 500 {
		t.Errorf("committed %v, want target {500 500}", pos)
	}
	if e.Dragging() {
		t.Error("engine should be idle after End")
	}
}

func TestCancelLeavesEngineIdle(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start("a", geometry.Point{}, testLayout())
	e.Cancel()
	if e.Dragging() {
		t.Error("engine should be idle after Cancel")
	}
	if _, _, ok := e.End(); ok {
		t.Error("End after Cancel should report no gesture")
	}
	if e.Step() {
		t.Error("no animation frames after Cancel")
	}
}

func TestZOrderMonotonic(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Start("a", geometry.Point{}, testLayout())
	e.End()
	e.Start("b", geometry.Point{X: 300}, testLayout())
	e.End()
	e.Start("a", geometry.Point{}, testLayout())
	e.End()

	if !(e.ZIndex("a") > e.ZIndex("b")) {
		t.Errorf("z(a)=%d should exceed z(b)=%d after re-raise", e.ZIndex("a"), e.ZIndex("b"))
	}
}

func TestDeriveOrderRowBuckets(t *testing.T) {
	placed := []Placed{
		{ID: "d", Pos: geometry.Point{X: 0, Y: 300}},
		{ID: "b", Pos: geometry.Point{X: 400, Y: 10}}, // same row as a (within 80)
		{ID: "a", Pos: geometry.Point{X: 0, Y: 0}},
		{ID: "c", Pos: geometry.Point{X: 200, Y: 60}}, // still same row as a
	}
	got := DeriveOrder(placed, 80)
	want := []string{"a", "c", "b", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDeriveOrderEmpty(t *testing.T) {
	if got := DeriveOrder(nil, 80); got != nil {
		t.Errorf("order of empty layout = %v, want nil", got)
	}
}

func TestAutoPlaceLattice(t *testing.T) {
	p0 := AutoPlace(0)
	p1 := AutoPlace(1)
	p4 := AutoPlace(4)

	if p0.X != 0 || p0.Y != 0 {
		t.Errorf("first slot = %v, want origin", p0)
	}
	if p1.Y != 0 || p1.X <= p0.X {
		t.Errorf("second slot = %v, want same row further right", p1)
	}
	if p4.X != 0 || p4.Y <= p0.Y {
		t.Errorf("fifth slot = %v, want next row at column 0", p4)
	}
}
