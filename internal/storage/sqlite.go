// Package storage provides SQLite-based persistence for finished match
// results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/merge-duel/internal/duel"
)

// Store manages the SQLite database connection for match persistence.
type Store struct {
	db *sql.DB
}

// MatchRecord is a persisted match result row.
type MatchRecord struct {
	ID        int64
	Room      string
	Player1   string
	Player2   string
	Score1    int
	Score2    int
	MaxTile1  int
	MaxTile2  int
	Winner    string // empty on draw
	EndReason string // "stuck", "forfeit"
	Turns     int
	Duration  int // seconds
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			max_tile1 INTEGER NOT NULL DEFAULT 0,
			max_tile2 INTEGER NOT NULL DEFAULT 0,
			winner TEXT,
			end_reason TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match. Implements room.MatchResultSaver.
func (s *Store) SaveMatch(result duel.Result) error {
	var p1, p2 string
	var sc1, sc2, mt1, mt2 int
	if len(result.Players) > 0 {
		p1 = string(result.Players[0])
		sc1 = result.Scores[0]
		mt1 = result.MaxTiles[0]
	}
	if len(result.Players) > 1 {
		p2 = string(result.Players[1])
		sc2 = result.Scores[1]
		mt2 = result.MaxTiles[1]
	}

	_, err := s.db.Exec(
		`INSERT INTO matches
			(room, player1, player2, score1, score2, max_tile1, max_tile2, winner, end_reason, turns, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(result.Room), p1, p2, sc1, sc2, mt1, mt2,
		string(result.Winner), result.EndReason, result.Turns,
		int(result.Duration.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}
	return nil
}

// RecentMatches retrieves the most recent matches involving a player,
// newest first. An empty player id returns matches for everyone.
func (s *Store) RecentMatches(player string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, room, player1, player2, score1, score2, max_tile1, max_tile2,
			COALESCE(winner, ''), end_reason, turns, duration_secs, created_at
		 FROM matches`
	args := []any{}
	if player != "" {
		query += ` WHERE player1 = ? OR player2 = ?`
		args = append(args, player, player)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.ID, &r.Room, &r.Player1, &r.Player2,
			&r.Score1, &r.Score2, &r.MaxTile1, &r.MaxTile2,
			&r.Winner, &r.EndReason, &r.Turns, &r.Duration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration failed: %w", err)
	}
	return out, nil
}
