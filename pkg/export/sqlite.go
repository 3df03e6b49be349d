package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mune-tada/corkboard/pkg/analysis"
	"github.com/mune-tada/corkboard/pkg/model"
)

// SQLiteExporter writes the whole root container to a SQLite database so
// boards can be queried outside the app.
type SQLiteExporter struct {
	Root *model.Root
}

// NewSQLiteExporter creates an exporter over a root container.
func NewSQLiteExporter(root *model.Root) *SQLiteExporter {
	return &SQLiteExporter{Root: root}
}

const sqliteSchema = `
CREATE TABLE boards (
	name         TEXT PRIMARY KEY,
	view_mode    TEXT NOT NULL,
	grid_columns INTEGER NOT NULL,
	card_height  TEXT NOT NULL,
	is_active    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE cards (
	board      TEXT NOT NULL REFERENCES boards(name),
	id         TEXT NOT NULL,
	path       TEXT NOT NULL,
	synopsis   TEXT,
	label      TEXT,
	status     TEXT,
	card_order INTEGER NOT NULL,
	pos_x      REAL,
	pos_y      REAL,
	in_degree  INTEGER NOT NULL DEFAULT 0,
	out_degree INTEGER NOT NULL DEFAULT 0,
	pagerank   REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (board, id)
);

CREATE TABLE links (
	board       TEXT NOT NULL REFERENCES boards(name),
	id          TEXT NOT NULL,
	from_id     TEXT NOT NULL,
	to_id       TEXT NOT NULL,
	label       TEXT,
	from_anchor TEXT,
	to_anchor   TEXT,
	color       TEXT,
	PRIMARY KEY (board, id)
);

CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX idx_cards_order ON cards(board, card_order);
CREATE INDEX idx_links_from ON links(board, from_id);
CREATE INDEX idx_links_to ON links(board, to_id);
`

// Export writes the database to the given path, replacing any existing
// file.
func (e *SQLiteExporter) Export(path string) error {
	if e.Root == nil {
		return fmt.Errorf("no container to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertBoards(db); err != nil {
		return fmt.Errorf("insert boards: %w", err)
	}
	if err := e.insertCards(db); err != nil {
		return fmt.Errorf("insert cards: %w", err)
	}
	if err := e.insertLinks(db); err != nil {
		return fmt.Errorf("insert links: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	return nil
}

func (e *SQLiteExporter) insertBoards(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO boards (name, view_mode, grid_columns, card_height, is_active)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range e.Root.BoardNames() {
		b := e.Root.Boards[name]
		active := 0
		if name == e.Root.Active {
			active = 1
		}
		if _, err := stmt.Exec(name, string(b.ViewMode), b.GridColumns, string(b.CardHeight), active); err != nil {
			return fmt.Errorf("board %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertCards(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cards (board, id, path, synopsis, label, status, card_order, pos_x, pos_y, in_degree, out_degree, pagerank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range e.Root.BoardNames() {
		b := e.Root.Boards[name]
		stats := analysis.Analyze(b)
		for _, c := range b.SortedCards() {
			var posX, posY *float64
			if c.Position != nil {
				posX, posY = &c.Position.X, &c.Position.Y
			}
			_, err := stmt.Exec(
				name, c.ID, c.Path, c.Synopsis, c.Label, c.Status, c.Order,
				posX, posY,
				stats.InDegree[c.ID], stats.OutDegree[c.ID], stats.PageRank[c.ID],
			)
			if err != nil {
				return fmt.Errorf("card %s: %w", c.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertLinks(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO links (board, id, from_id, to_id, label, from_anchor, to_anchor, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range e.Root.BoardNames() {
		b := e.Root.Boards[name]
		for _, l := range b.Links {
			_, err := stmt.Exec(name, l.ID, l.FromID, l.ToID, l.Label,
				string(l.FromAnchor), string(l.ToAnchor), l.Color)
			if err != nil {
				return fmt.Errorf("link %s: %w", l.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	_, err := db.Exec(`INSERT INTO meta (key, value) VALUES
		('exported_at', ?),
		('active_board', ?),
		('board_count', ?)`,
		time.Now().UTC().Format(time.RFC3339),
		e.Root.Active,
		fmt.Sprintf("%d", len(e.Root.Boards)),
	)
	return err
}
