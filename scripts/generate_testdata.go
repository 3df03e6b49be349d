//go:build ignore

// generate_testdata.go creates a demo workspace for manual testing.
// Usage: go run scripts/generate_testdata.go [dir]
//
// Creates a directory (default tests/testdata/demo) holding a set of
// markdown notes and a corkboard.json with two boards: a grid board over
// all notes and a freeform board with positioned cards and links.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/persist"
)

var notes = []struct {
	name string
	body string
}{
	{"opening.md", "# Opening\n\nThe harbor at dawn. Mist on the water, one light in the chandlery window."},
	{"inciting.md", "# Inciting incident\n\nThe ledger goes missing. Marta finds the office door forced."},
	{"midpoint.md", "# Midpoint\n\nThe ledger was never stolen. Marta hid it herself, before she knew why."},
	{"lowpoint.md", "# Low point\n\nThe partnership dissolves. Storm season closes the harbor."},
	{"climax.md", "# Climax\n\nConfrontation on the breakwater at high tide."},
	{"resolution.md", "# Resolution\n\nSpring. The chandlery reopens under a new name."},
	{"marta.md", "# Marta\n\nHarbormaster's daughter. Keeps accounts, keeps secrets."},
	{"theo.md", "# Theo\n\nThe chandler. Owes money to half the town and favors to the rest."},
}

func main() {
	dir := "tests/testdata/demo"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	for _, n := range notes {
		if err := os.WriteFile(filepath.Join(dir, n.name), []byte(n.body+"\n"), 0o644); err != nil {
			fatal(err)
		}
	}

	rng := rand.New(rand.NewSource(7))

	grid := model.NewBoard()
	grid.GridColumns = 3
	for i, n := range notes {
		grid.Cards = append(grid.Cards, model.Card{
			ID:    fmt.Sprintf("card-%04d", i+1),
			Path:  n.name,
			Order: i,
		})
	}

	freeform := model.NewBoard()
	freeform.ViewMode = model.ViewFreeform
	beats := []string{"opening.md", "inciting.md", "midpoint.md", "lowpoint.md", "climax.md", "resolution.md"}
	for i, name := range beats {
		freeform.Cards = append(freeform.Cards, model.Card{
			ID:    fmt.Sprintf("card-%04d", i+1),
			Path:  name,
			Order: i,
			Position: &model.Position{
				X: float64(i%3)*300 + rng.Float64()*40,
				Y: float64(i/3)*180 + rng.Float64()*30,
			},
		})
	}
	for i := 0; i < len(beats)-1; i++ {
		freeform.Links = append(freeform.Links, model.Link{
			ID:     fmt.Sprintf("link-%04d", i+1),
			FromID: fmt.Sprintf("card-%04d", i+1),
			ToID:   fmt.Sprintf("card-%04d", i+2),
			Label:  "then",
		})
	}

	root := &model.Root{
		Boards: map[string]*model.Board{
			"All notes": grid,
			"Story arc": freeform,
		},
		Active: "Story arc",
	}

	path := filepath.Join(dir, persist.DefaultFileName)
	if err := persist.SaveRoot(path, root); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %d notes and %s\n", len(notes), path)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
