package ui

import (
	"math"

	"github.com/mune-tada/corkboard/pkg/geometry"
)

// rasterCurve plots a quadratic link curve's strokes onto the cell grid.
// The curve is sampled densely relative to its cell length; each plotted
// cell picks a line rune from the local direction. Arrowheads are drawn
// separately with rasterArrow so they survive the card blit pass: the
// endpoint sits on the target card's border cell.
func rasterCurve(buf *cellBuf, c geometry.Curve, vp *geometry.Viewport, class paintClass) {
	startCol, startRow := toCell(c.Start, vp)
	endCol, endRow := toCell(c.End, vp)
	span := math.Hypot(float64(endCol-startCol), float64(endRow-startRow))
	steps := int(span * 3)
	if steps < 8 {
		steps = 8
	}

	prevCol, prevRow := startCol, startRow
	for i := 1; i <= steps; i++ {
		col, row := toCell(c.PointAt(float64(i)/float64(steps)), vp)
		if col == prevCol && row == prevRow {
			continue
		}
		// Keep whichever rune landed first where curves cross, and never
		// overdraw card cells.
		if cellFree(buf, col, row) {
			buf.set(col, row, strokeRune(col-prevCol, row-prevRow), class)
		}
		prevCol, prevRow = col, row
	}
}

// rasterArrow draws the terminal arrowhead, overwriting whatever occupies
// the endpoint cell.
func rasterArrow(buf *cellBuf, c geometry.Curve, vp *geometry.Viewport, class paintClass) {
	endCol, endRow := toCell(c.End, vp)
	nearCol, nearRow := toCell(c.PointAt(0.9), vp)
	buf.set(endCol, endRow, arrowRune(endCol-nearCol, endRow-nearRow, c), class)
}

// cellFree reports whether a cell still holds untouched background.
func cellFree(buf *cellBuf, col, row int) bool {
	if col < 0 || col >= buf.w || row < 0 || row >= buf.h {
		return false
	}
	i := row*buf.w + col
	return buf.classes[i] == paintNone && buf.runes[i] == ' '
}

// strokeRune picks the line character for a step between adjacent cells.
func strokeRune(dc, dr int) rune {
	switch {
	case dr == 0:
		return '─'
	case dc == 0:
		return '│'
	case (dc > 0) == (dr > 0):
		return '╲'
	default:
		return '╱'
	}
}

// arrowRune picks the arrowhead for the curve's terminal direction. When
// the last raster step degenerates to a single cell the chord direction
// decides.
func arrowRune(dc, dr int, c geometry.Curve) rune {
	if dc == 0 && dr == 0 {
		dx := c.End.X - c.Start.X
		dy := c.End.Y - c.Start.Y
		if math.Abs(dx) >= math.Abs(dy) {
			if dx >= 0 {
				return '▶'
			}
			return '◀'
		}
		if dy >= 0 {
			return '▼'
		}
		return '▲'
	}
	if absInt(dc) >= absInt(dr) {
		if dc > 0 {
			return '▶'
		}
		return '◀'
	}
	if dr > 0 {
		return '▼'
	}
	return '▲'
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// rasterLabel writes a link label centered on the curve's offset label box.
func rasterLabel(buf *cellBuf, c geometry.Curve, label string, vp *geometry.Viewport) {
	if label == "" {
		return
	}
	box := c.LabelRect(len(label))
	col, row := toCell(box.Center(), vp)
	text := " " + truncate(label, 24) + " "
	buf.writeString(col-len([]rune(text))/2, row, text, paintLinkLabel)
}
