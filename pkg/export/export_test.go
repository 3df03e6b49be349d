package export

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mune-tada/corkboard/pkg/model"
)

func sampleBoard() *model.Board {
	b := model.NewBoard()
	b.Cards = []model.Card{
		{ID: "c1", Path: "notes/alpha.md", Synopsis: "the opening idea", Label: "theme", Status: "doing", Order: 0},
		{ID: "c2", Path: "notes/beta.md", Order: 1, Position: &model.Position{X: 400, Y: 120}},
		{ID: "c3", Path: "gamma.txt", Order: 2},
	}
	b.Links = []model.Link{
		{ID: "l1", FromID: "c1", ToID: "c2", Label: "leads to"},
		{ID: "l2", FromID: "c2", ToID: "c3"},
	}
	return b
}

func TestGenerateMarkdown(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	got := GenerateMarkdown(sampleBoard(), MarkdownOptions{
		BoardName: "Plot",
		Previews:  map[string]string{"notes/beta.md": "second act notes"},
		Now:       now,
	})

	for _, want := range []string{
		"# Plot",
		"2026-03-14",
		"## alpha",
		"the opening idea",
		"label: theme",
		"status: doing",
		"second act notes",
		"[notes/alpha.md](notes/alpha.md)",
		"- alpha -> beta (leads to)",
		"- beta -> gamma",
		"## Structure",
		"Components: 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q\n%s", want, got)
		}
	}
}

func TestGenerateMarkdownSkipsDanglingLinks(t *testing.T) {
	b := sampleBoard()
	b.Links = append(b.Links, model.Link{ID: "l3", FromID: "c1", ToID: "ghost"})
	got := GenerateMarkdown(b, MarkdownOptions{BoardName: "Plot"})
	if strings.Contains(got, "ghost") {
		t.Error("dangling link leaked into the export")
	}
}

func TestSaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "board.md")
	if err := SaveMarkdown(sampleBoard(), MarkdownOptions{BoardName: "Plot"}, path); err != nil {
		t.Fatalf("SaveMarkdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Plot") {
		t.Errorf("file starts with %q", string(data[:20]))
	}
}

func TestRenderSVGContainsCurvesAndCards(t *testing.T) {
	b := sampleBoard()
	b.ViewMode = model.ViewFreeform
	l := buildLayout(b, "Plot")

	var buf bytes.Buffer
	if err := renderSVG(&buf, l); err != nil {
		t.Fatalf("renderSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatal("not an svg document")
	}
	// Quadratic bezier paths for each resolved link.
	if got := strings.Count(out, "Q"); got < 2 {
		t.Errorf("expected quadratic paths, got %d Q segments", got)
	}
	for _, want := range []string{"alpha", "beta", "gamma", "leads to"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestBuildLayoutGridProjection(t *testing.T) {
	b := sampleBoard()
	b.GridColumns = 2
	l := buildLayout(b, "")

	if len(l.Cards) != 3 {
		t.Fatalf("cards = %d", len(l.Cards))
	}
	// Row 0: c1 c2. Row 1: c3 under c1.
	if l.Cards[0].Rect.Y != l.Cards[1].Rect.Y {
		t.Error("first two cards should share a row")
	}
	if l.Cards[2].Rect.X != l.Cards[0].Rect.X {
		t.Error("third card should open the second row")
	}
	if l.Cards[2].Rect.Y <= l.Cards[0].Rect.Y {
		t.Error("third card should sit below the first row")
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "board.svg")
	if err := SaveSnapshot(sampleBoard(), SnapshotOptions{Path: svgPath, BoardName: "Plot"}); err != nil {
		t.Fatalf("SaveSnapshot svg: %v", err)
	}
	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("svg output expected")
	}

	pngPath := filepath.Join(dir, "board.png")
	if err := SaveSnapshot(sampleBoard(), SnapshotOptions{Path: pngPath}); err != nil {
		t.Fatalf("SaveSnapshot png: %v", err)
	}
	header := make([]byte, 8)
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Read(header); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(header, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}) {
		t.Error("png signature missing")
	}
}

func TestSaveSnapshotRejectsEmptyBoard(t *testing.T) {
	err := SaveSnapshot(model.NewBoard(), SnapshotOptions{Path: filepath.Join(t.TempDir(), "x.svg")})
	if err == nil {
		t.Error("empty board should be rejected")
	}
}

func TestSQLiteExportRoundTrip(t *testing.T) {
	root := model.NewRoot()
	root.Boards["Plot"] = sampleBoard()
	root.Active = "Plot"

	path := filepath.Join(t.TempDir(), "corkboard.sqlite3")
	if err := NewSQLiteExporter(root).Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var boards, cards, links int
	if err := db.QueryRow(`SELECT COUNT(*) FROM boards`).Scan(&boards); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM cards WHERE board = 'Plot'`).Scan(&cards); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE board = 'Plot'`).Scan(&links); err != nil {
		t.Fatal(err)
	}
	if boards != 2 || cards != 3 || links != 2 {
		t.Errorf("boards=%d cards=%d links=%d", boards, cards, links)
	}

	var active string
	if err := db.QueryRow(`SELECT name FROM boards WHERE is_active = 1`).Scan(&active); err != nil {
		t.Fatal(err)
	}
	if active != "Plot" {
		t.Errorf("active = %q", active)
	}

	var inDeg int
	if err := db.QueryRow(`SELECT in_degree FROM cards WHERE board = 'Plot' AND id = 'c2'`).Scan(&inDeg); err != nil {
		t.Fatal(err)
	}
	if inDeg != 1 {
		t.Errorf("c2 in_degree = %d, want 1", inDeg)
	}
}
