package drag

import (
	"sort"

	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
)

// Freeform auto-placement lattice for cards that have never been dragged:
// a fixed row/column grid so newly added cards don't collide.
const (
	AutoPlaceColumns = 4
	AutoPlaceWidth   = 260.0
	AutoPlaceGap     = 24.0
	AutoPlaceRow     = 180.0
)

// AutoPlace returns the lattice position for the n-th card without a
// persisted position.
func AutoPlace(n int) model.Position {
	col := n % AutoPlaceColumns
	row := n / AutoPlaceColumns
	return model.Position{
		X: float64(col) * (AutoPlaceWidth + AutoPlaceGap),
		Y: float64(row) * (AutoPlaceRow + AutoPlaceGap),
	}
}

// Placed pairs a card id with its freeform position for order derivation.
type Placed struct {
	ID  string
	Pos geometry.Point
}

// DeriveOrder converts a freeform layout into a linear order. Cards are
// bucketed into rows by y (two cards within rowTolerance share a row), then
// sorted left-to-right within a row and top-to-bottom across rows. The
// result is the new canonical order.
func DeriveOrder(placed []Placed, rowTolerance float64) []string {
	if len(placed) == 0 {
		return nil
	}
	byY := make([]Placed, len(placed))
	copy(byY, placed)
	sort.SliceStable(byY, func(i, j int) bool { return byY[i].Pos.Y < byY[j].Pos.Y })

	// Greedy row bucketing against the row's first (topmost) card.
	var rows [][]Placed
	for _, p := range byY {
		if n := len(rows); n > 0 && p.Pos.Y-rows[n-1][0].Pos.Y <= rowTolerance {
			rows[n-1] = append(rows[n-1], p)
			continue
		}
		rows = append(rows, []Placed{p})
	}

	out := make([]string, 0, len(placed))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].Pos.X < row[j].Pos.X })
		for _, p := range row {
			out = append(out, p.ID)
		}
	}
	return out
}
