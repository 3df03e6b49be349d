package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/mune-tada/corkboard/pkg/drag"
	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
)

// SnapshotOptions controls spatial snapshot export.
type SnapshotOptions struct {
	Path      string // output path; format inferred from extension when Format empty
	Format    string // "svg" or "png" (case-insensitive)
	BoardName string
}

// SaveSnapshot renders the board's spatial layout, freeform positions when
// present and the grid projection otherwise, with links drawn as the same
// quadratic curves the interactive view uses.
func SaveSnapshot(b *model.Board, opts SnapshotOptions) error {
	if len(b.Cards) == 0 {
		return fmt.Errorf("no cards to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(b, opts.BoardName)

	switch format {
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderSVG(f, layout)
	}
}

type layoutCard struct {
	Card model.Card
	Rect geometry.Rect
}

type layoutLink struct {
	Link  model.Link
	Curve geometry.Curve
}

type layout struct {
	Title  string
	Cards  []layoutCard
	Links  []layoutLink
	Width  int
	Height int
}

const (
	snapshotPadding = 36.0
	snapshotHeader  = 48.0
	cardGap         = drag.AutoPlaceGap
	cardWidth       = drag.AutoPlaceWidth
)

// buildLayout computes card boxes in content space and shifts everything
// into the positive quadrant with padding.
func buildLayout(b *model.Board, title string) layout {
	preset := b.CardHeight.Preset()
	cardH := float64(preset.MinHeight)

	cards := b.SortedCards()
	out := layout{Title: title}

	freeform := b.ViewMode == model.ViewFreeform
	autoIdx := 0
	for _, c := range cards {
		var pos model.Position
		if freeform {
			if c.Position != nil {
				pos = *c.Position
			} else {
				pos = drag.AutoPlace(autoIdx)
				autoIdx++
			}
		} else {
			cols := model.ClampGridColumns(b.GridColumns)
			pos = model.Position{
				X: float64(c.Order%cols) * (cardWidth + cardGap),
				Y: float64(c.Order/cols) * (cardH + cardGap),
			}
		}
		out.Cards = append(out.Cards, layoutCard{
			Card: c,
			Rect: geometry.Rect{X: pos.X, Y: pos.Y, W: cardWidth, H: cardH},
		})
	}

	// Normalize to the positive quadrant.
	minX, minY := out.Cards[0].Rect.X, out.Cards[0].Rect.Y
	maxX, maxY := out.Cards[0].Rect.Right(), out.Cards[0].Rect.Bottom()
	for _, lc := range out.Cards[1:] {
		minX = min(minX, lc.Rect.X)
		minY = min(minY, lc.Rect.Y)
		maxX = max(maxX, lc.Rect.Right())
		maxY = max(maxY, lc.Rect.Bottom())
	}
	for i := range out.Cards {
		out.Cards[i].Rect.X += snapshotPadding - minX
		out.Cards[i].Rect.Y += snapshotPadding + snapshotHeader - minY
	}
	out.Width = int(maxX - minX + 2*snapshotPadding)
	out.Height = int(maxY - minY + 2*snapshotPadding + snapshotHeader)

	rects := make(map[string]geometry.Rect, len(out.Cards))
	for _, lc := range out.Cards {
		rects[lc.Card.ID] = lc.Rect
	}
	for _, l := range b.Links {
		from, okFrom := rects[l.FromID]
		to, okTo := rects[l.ToID]
		if !okFrom || !okTo {
			continue
		}
		p1, p2, _, _ := geometry.Endpoints(from, to, l.FromAnchor, l.ToAnchor)
		out.Links = append(out.Links, layoutLink{Link: l, Curve: geometry.LinkCurve(p1, p2)})
	}
	return out
}

var (
	snapBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	snapCardFill = color.RGBA{0xff, 0xfd, 0xf5, 0xff}
	snapStroke   = color.RGBA{0x33, 0x33, 0x33, 0xff}
	snapLink     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	snapText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	snapSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	snapLabelBG  = color.RGBA{0xee, 0xee, 0xf6, 0xff}
)

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func renderSVG(w io.Writer, l layout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+css(snapBackdrop))

	if l.Title != "" {
		canvas.Text(int(snapshotPadding), 30, l.Title,
			fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(snapText)))
	}

	for _, ll := range l.Links {
		c := ll.Curve
		canvas.Qbez(int(c.Start.X), int(c.Start.Y), int(c.Control.X), int(c.Control.Y),
			int(c.End.X), int(c.End.Y),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", linkCSS(ll.Link)))
		if ll.Link.Label != "" {
			box := c.LabelRect(len(ll.Link.Label))
			canvas.Roundrect(int(box.X), int(box.Y), int(box.W), int(box.H), 4, 4,
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:0.5", css(snapLabelBG), css(snapSubtle)))
			mid := box.Center()
			canvas.Text(int(mid.X), int(mid.Y)+4, ll.Link.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(snapText)))
		}
	}

	for _, lc := range l.Cards {
		r := lc.Rect
		canvas.Roundrect(int(r.X), int(r.Y), int(r.W), int(r.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(snapCardFill), css(snapStroke)))
		canvas.Text(int(r.X)+10, int(r.Y)+20, cardTitle(lc.Card),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(snapText)))
		if lc.Card.Label != "" {
			canvas.Text(int(r.X)+10, int(r.Y)+38, lc.Card.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(snapSubtle)))
		}
	}

	canvas.End()
	return nil
}

func linkCSS(l model.Link) string {
	if l.Color != "" {
		return l.Color
	}
	return css(snapLink)
}

func renderPNG(path string, l layout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(snapBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if l.Title != "" {
		dc.SetColor(snapText)
		dc.DrawString(l.Title, snapshotPadding, 30)
	}

	for _, ll := range l.Links {
		c := ll.Curve
		if ll.Link.Color != "" {
			dc.SetHexColor(ll.Link.Color)
		} else {
			dc.SetColor(snapLink)
		}
		dc.SetLineWidth(2)
		dc.MoveTo(c.Start.X, c.Start.Y)
		dc.QuadraticTo(c.Control.X, c.Control.Y, c.End.X, c.End.Y)
		dc.Stroke()
		if ll.Link.Label != "" {
			box := c.LabelRect(len(ll.Link.Label))
			dc.SetColor(snapLabelBG)
			dc.DrawRoundedRectangle(box.X, box.Y, box.W, box.H, 4)
			dc.Fill()
			dc.SetColor(snapText)
			mid := box.Center()
			dc.DrawStringAnchored(ll.Link.Label, mid.X, mid.Y, 0.5, 0.35)
		}
	}

	for _, lc := range l.Cards {
		r := lc.Rect
		dc.SetColor(snapCardFill)
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 8)
		dc.Fill()
		dc.SetColor(snapStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 8)
		dc.Stroke()
		dc.SetColor(snapText)
		dc.DrawString(cardTitle(lc.Card), r.X+10, r.Y+20)
		if lc.Card.Label != "" {
			dc.SetColor(snapSubtle)
			dc.DrawString(lc.Card.Label, r.X+10, r.Y+38)
		}
	}

	return dc.SavePNG(path)
}
