package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mune-tada/corkboard/pkg/board"
	"github.com/mune-tada/corkboard/pkg/connector"
	"github.com/mune-tada/corkboard/pkg/drag"
	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
)

// Content-space units per terminal cell. A cell is roughly twice as tall
// as it is wide, so the vertical scale doubles the horizontal one to keep
// freeform layouts visually proportional.
const (
	PxPerCol = 10.0
	PxPerRow = 20.0
)

const (
	cardWidthPx = drag.AutoPlaceWidth
	gridGapPx   = drag.AutoPlaceGap
)

// contentLayout maps every card to its content-space box under the board's
// current arrangement. Freeform cards without a persisted position fall into
// the auto-placement lattice; grid cards project from their order.
func contentLayout(b *model.Board) map[string]geometry.Rect {
	preset := b.CardHeight.Preset()
	out := make(map[string]geometry.Rect, len(b.Cards))
	if b.ViewMode == model.ViewFreeform {
		auto := 0
		for _, c := range b.SortedCards() {
			var pos model.Position
			if c.Position != nil {
				pos = *c.Position
			} else {
				pos = drag.AutoPlace(auto)
				auto++
			}
			out[c.ID] = geometry.Rect{
				X: pos.X, Y: pos.Y,
				W: cardWidthPx, H: float64(preset.FreeformMinHeight),
			}
		}
		return out
	}
	cols := model.ClampGridColumns(b.GridColumns)
	for _, c := range b.SortedCards() {
		out[c.ID] = geometry.Rect{
			X: float64(c.Order%cols) * (cardWidthPx + gridGapPx),
			Y: float64(c.Order/cols) * (float64(preset.MinHeight) + gridGapPx),
			W: cardWidthPx,
			H: float64(preset.MinHeight),
		}
	}
	return out
}

// renderedLinks resolves every visible link against a layout, producing the
// hit-testable form the connector layer works with.
func renderedLinks(s *board.Store, layout map[string]geometry.Rect) []connector.RenderedLink {
	resolved := s.ResolvedLinks()
	out := make([]connector.RenderedLink, 0, len(resolved))
	for _, rl := range resolved {
		from, okF := layout[rl.From.ID]
		to, okT := layout[rl.To.ID]
		if !okF || !okT {
			continue
		}
		p1, p2, a1, a2 := geometry.Endpoints(from, to, rl.Link.FromAnchor, rl.Link.ToAnchor)
		out = append(out, connector.RenderedLink{
			ID:         rl.Link.ID,
			FromCard:   rl.From.ID,
			ToCard:     rl.To.ID,
			FromAnchor: a1,
			ToAnchor:   a2,
			From:       p1,
			To:         p2,
		})
	}
	return out
}

// paintClass tags a buffer cell so the final pass can style whole runs at
// once instead of styling cell by cell.
type paintClass uint8

const (
	paintNone paintClass = iota
	paintLink
	paintLinkSelected
	paintLinkLabel
	paintHandle
	paintGhost
	paintBorder
	paintBorderActive
	paintTitle
	paintText
	paintMeta
)

func (t Theme) styleFor(c paintClass) lipgloss.Style {
	switch c {
	case paintLink:
		return t.LinkLine
	case paintLinkSelected, paintHandle:
		return t.Handle
	case paintLinkLabel:
		return t.LinkLabel
	case paintGhost:
		return t.MutedText
	case paintBorder:
		return t.BorderLine
	case paintBorderActive:
		return t.BorderActive
	case paintTitle:
		return t.Header
	case paintMeta:
		return t.MutedText
	default:
		return t.Base
	}
}

// cellBuf is a fixed-size rune raster with a paint class per cell. Wide
// runes occupy their width; the shadowed cells hold rune 0 and are skipped
// when the buffer is flattened.
type cellBuf struct {
	w, h    int
	runes   []rune
	classes []paintClass
}

func newCellBuf(w, h int) *cellBuf {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b := &cellBuf{w: w, h: h, runes: make([]rune, w*h), classes: make([]paintClass, w*h)}
	for i := range b.runes {
		b.runes[i] = ' '
	}
	return b
}

func (b *cellBuf) set(col, row int, r rune, class paintClass) {
	if col < 0 || col >= b.w || row < 0 || row >= b.h {
		return
	}
	i := row*b.w + col
	b.runes[i] = r
	b.classes[i] = class
}

func (b *cellBuf) writeString(col, row int, s string, class paintClass) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		b.set(col, row, r, class)
		if w == 2 {
			b.set(col+1, row, 0, class)
		}
		col += w
	}
}

// render flattens the buffer into styled terminal lines, batching adjacent
// cells of the same class into one style call.
func (b *cellBuf) render(t Theme) string {
	var sb strings.Builder
	for row := 0; row < b.h; row++ {
		base := row * b.w
		col := 0
		for col < b.w {
			class := b.classes[base+col]
			var run strings.Builder
			for col < b.w && b.classes[base+col] == class {
				if r := b.runes[base+col]; r != 0 {
					run.WriteRune(r)
				}
				col++
			}
			if class == paintNone {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(t.styleFor(class).Render(run.String()))
			}
		}
		if row < b.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// cellRect is a card box projected onto the cell grid.
type cellRect struct {
	col, row, w, h int
}

func toCell(p geometry.Point, vp *geometry.Viewport) (int, int) {
	q := vp.ContentToClient(p)
	return int(math.Floor(q.X / PxPerCol)), int(math.Floor(q.Y / PxPerRow))
}

func toCells(r geometry.Rect, vp *geometry.Viewport) cellRect {
	tl := vp.ContentToClient(geometry.Point{X: r.X, Y: r.Y})
	br := vp.ContentToClient(geometry.Point{X: r.Right(), Y: r.Bottom()})
	col := int(math.Floor(tl.X / PxPerCol))
	row := int(math.Floor(tl.Y / PxPerRow))
	w := int(math.Ceil(br.X/PxPerCol)) - col
	h := int(math.Ceil(br.Y/PxPerRow)) - row
	if w < 4 {
		w = 4
	}
	if h < 2 {
		h = 2
	}
	return cellRect{col: col, row: row, w: w, h: h}
}

// cellToContent maps a cell coordinate back to content space, targeting the
// cell center so keyboard-driven pointer emulation lands inside the cell.
func cellToContent(col, row int, vp *geometry.Viewport) geometry.Point {
	client := geometry.Point{
		X: (float64(col) + 0.5) * PxPerCol,
		Y: (float64(row) + 0.5) * PxPerRow,
	}
	return vp.ClientToContent(client)
}

// wrapLines hard-wraps text to the given cell width, keeping at most limit
// lines. Existing newlines are respected.
func wrapLines(text string, width, limit int) []string {
	if width < 1 || limit < 1 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		for para != "" {
			if len(out) >= limit {
				return out
			}
			if runewidth.StringWidth(para) <= width {
				out = append(out, para)
				break
			}
			cut := runewidth.Truncate(para, width, "")
			// Prefer breaking at the last space inside the cut.
			if i := strings.LastIndex(cut, " "); i > 0 {
				cut = cut[:i]
			}
			out = append(out, cut)
			para = strings.TrimLeft(para[len(cut):], " ")
		}
		if len(out) >= limit {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// blitCard draws one card box into the buffer: rounded border with the
// title embedded in the top edge, wrapped content lines, and a meta line
// (status and label) pinned above the bottom edge.
func blitCard(buf *cellBuf, r cellRect, title, text, meta string, active, ghost bool, clamp int) {
	borderClass := paintBorder
	switch {
	case ghost:
		borderClass = paintGhost
	case active:
		borderClass = paintBorderActive
	}

	right := r.col + r.w - 1
	bottom := r.row + r.h - 1
	buf.set(r.col, r.row, '╭', borderClass)
	buf.set(right, r.row, '╮', borderClass)
	buf.set(r.col, bottom, '╰', borderClass)
	buf.set(right, bottom, '╯', borderClass)
	for x := r.col + 1; x < right; x++ {
		buf.set(x, r.row, '─', borderClass)
		buf.set(x, bottom, '─', borderClass)
	}
	for y := r.row + 1; y < bottom; y++ {
		buf.set(r.col, y, '│', borderClass)
		buf.set(right, y, '│', borderClass)
		for x := r.col + 1; x < right; x++ {
			buf.set(x, y, ' ', paintNone)
		}
	}

	inner := r.w - 4
	if inner < 1 {
		inner = 1
	}
	titleClass := paintTitle
	textClass := paintText
	if ghost {
		titleClass = paintGhost
		textClass = paintGhost
	}
	if title != "" {
		buf.writeString(r.col+1, r.row, " "+truncate(title, inner)+" ", titleClass)
	}

	maxLines := r.h - 2
	if meta != "" && maxLines > 1 {
		maxLines--
	}
	if clamp > 0 && clamp < maxLines {
		maxLines = clamp
	}
	y := r.row + 1
	for _, line := range wrapLines(text, inner, maxLines) {
		buf.writeString(r.col+2, y, line, textClass)
		y++
	}
	if meta != "" && r.h >= 3 {
		buf.writeString(r.col+2, bottom-1, truncate(meta, inner), paintMeta)
	}
}

func cardMeta(c model.Card) string {
	var parts []string
	if c.Status != "" {
		parts = append(parts, "● "+c.Status)
	}
	if c.Label != "" {
		parts = append(parts, "#"+c.Label)
	}
	return strings.Join(parts, "  ")
}

// boardRenderState carries everything one frame of the spatial views needs.
type boardRenderState struct {
	store    *board.Store
	vp       *geometry.Viewport
	eng      *drag.Engine
	links    *connector.Layer
	selected string
	width    int
	height   int
	theme    Theme
}

// renderBoard draws the grid or freeform arrangement with the link layer
// underneath the cards. Draw order is curves, labels, cards, handles, then
// the live rubber band, so cards occlude lines and gesture feedback stays
// on top.
func renderBoard(s boardRenderState) string {
	b := s.store.Board()
	layout := contentLayout(b)

	// The dragged card follows the animated position, not its committed one.
	draggedID := s.eng.CardID()
	if pos, ok := s.eng.Position(); ok {
		if box, found := layout[draggedID]; found {
			box.X, box.Y = pos.X, pos.Y
			layout[draggedID] = box
		}
	}

	buf := newCellBuf(s.width, s.height)

	rendered := renderedLinks(s.store, layout)
	if s.links.Visible() {
		for _, rl := range rendered {
			rasterCurve(buf, rl.Curve(), s.vp, linkClass(rl.ID, s.links.Selected()))
		}
		for _, rl := range rendered {
			if l := b.Link(rl.ID); l != nil && l.Label != "" {
				rasterLabel(buf, rl.Curve(), l.Label, s.vp)
			}
		}
	}

	// Cards draw lowest z first so raised cards land on top.
	cards := b.SortedCards()
	sort.SliceStable(cards, func(i, j int) bool {
		return s.eng.ZIndex(cards[i].ID) < s.eng.ZIndex(cards[j].ID)
	})
	preset := b.CardHeight.Preset()
	for _, c := range cards {
		box, ok := layout[c.ID]
		if !ok {
			continue
		}
		blitCard(buf, toCells(box, s.vp),
			cardTitle(c), s.store.CardText(c), cardMeta(c),
			c.ID == s.selected || c.ID == draggedID,
			c.ID == draggedID,
			preset.LineClamp)
	}

	// Arrowheads land on target card borders; draw them after the cards so
	// they stay visible.
	if s.links.Visible() {
		for _, rl := range rendered {
			rasterArrow(buf, rl.Curve(), s.vp, linkClass(rl.ID, s.links.Selected()))
		}
	}

	if g := s.links.Gesture(); g != nil {
		targetCard, targetAnchor, hasTarget := g.Target()
		for _, h := range connector.Handles(layout) {
			r := '○'
			class := paintHandle
			if hasTarget && h.CardID == targetCard && h.Anchor == targetAnchor {
				r = '●'
				class = paintLinkSelected
			}
			col, row := toCell(h.Pos, s.vp)
			buf.set(col, row, r, class)
		}
		rasterCurve(buf, g.RubberBand(), s.vp, paintLinkSelected)
		rasterArrow(buf, g.RubberBand(), s.vp, paintLinkSelected)
	}

	return buf.render(s.theme)
}

func linkClass(id, selected string) paintClass {
	if id == selected {
		return paintLinkSelected
	}
	return paintLink
}

// renderTextMode draws the linear arrangement: one row per card in order,
// with the selection marked and a connections section when the link layer
// is visible.
func renderTextMode(s boardRenderState) string {
	b := s.store.Board()
	var sb strings.Builder
	for i, c := range b.SortedCards() {
		marker := "  "
		line := fmt.Sprintf("%2d. %s", i+1, cardTitle(c))
		if meta := cardMeta(c); meta != "" {
			line += "  " + meta
		}
		style := s.theme.Base
		if c.ID == s.selected {
			marker = "▸ "
			style = s.theme.BorderActive
		}
		sb.WriteString(style.Render(marker + truncate(line, s.width-2)))
		sb.WriteByte('\n')
		if text := firstLine(s.store.CardText(c)); text != "" {
			sb.WriteString(s.theme.MutedText.Render("      " + truncate(text, s.width-8)))
			sb.WriteByte('\n')
		}
	}

	if s.links.Visible() {
		links := s.store.ResolvedLinks()
		if len(links) > 0 {
			sb.WriteByte('\n')
			sb.WriteString(s.theme.Header.Render("Connections"))
			sb.WriteByte('\n')
			for _, rl := range links {
				line := fmt.Sprintf("  %s -> %s", cardTitle(rl.From), cardTitle(rl.To))
				if rl.Link.Label != "" {
					line += " (" + rl.Link.Label + ")"
				}
				style := s.theme.LinkLine
				if rl.Link.ID == s.links.Selected() {
					style = s.theme.Handle
				}
				sb.WriteString(style.Render(truncate(line, s.width-2)))
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
