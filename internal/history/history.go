// Package history persists accepted REPL lines to a sqlite database so a
// session can be reopened and reviewed later.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// History appends accepted REPL input to a sqlite database, one row per
// line, so a session can review what was typed.
type History struct {
	db *sql.DB
}

// Open creates (if needed) and opens the sqlite database at path, ensuring
// its single table exists.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

// Append records line as accepted at the current time.
func (h *History) Append(line string) error {
	_, err := h.db.Exec(`INSERT INTO history (line, recorded_at) VALUES (?, ?)`, line, time.Now())
	return err
}

// Recent returns the last n recorded lines, most recent last.
func (h *History) Recent(n int) ([]string, error) {
	rows, err := h.db.Query(`SELECT line FROM history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}
