package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"go.uber.org/zap"

	"norster/internal/core"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	playlist    TEXT NOT NULL,
	difficulty  TEXT NOT NULL,
	standings   TEXT NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
`

// HistoryStore persists finished games to a local sqlite database.
type HistoryStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryStore opens (creating if needed) the history database at path.
func NewHistoryStore(path string, logger *zap.Logger) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &HistoryStore{db: db, logger: logger}, nil
}

// RecordGame inserts one finished game. Standings are stored as JSON in
// roster-stable descending score order, exactly as the session exposes them.
func (hs *HistoryStore) RecordGame(ctx context.Context, rec core.GameRecord) error {
	standings, err := json.Marshal(rec.Standings)
	if err != nil {
		return fmt.Errorf("failed to encode standings: %w", err)
	}

	finishedAt := rec.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	_, err = hs.db.ExecContext(ctx,
		`INSERT INTO games (playlist, difficulty, standings, finished_at) VALUES (?, ?, ?, ?)`,
		rec.Playlist, rec.Difficulty, string(standings), finishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game record: %w", err)
	}

	hs.logger.Info("Recorded finished game",
		zap.String("playlist", rec.Playlist),
		zap.String("difficulty", rec.Difficulty))

	return nil
}

// RecentGames returns up to limit finished games, newest first.
func (hs *HistoryStore) RecentGames(ctx context.Context, limit int) ([]core.GameRecord, error) {
	rows, err := hs.db.QueryContext(ctx,
		`SELECT id, playlist, difficulty, standings, finished_at FROM games ORDER BY finished_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game records: %w", err)
	}
	defer rows.Close()

	var records []core.GameRecord
	for rows.Next() {
		var rec core.GameRecord
		var standings string
		if err := rows.Scan(&rec.ID, &rec.Playlist, &rec.Difficulty, &standings, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}
		if err := json.Unmarshal([]byte(standings), &rec.Standings); err != nil {
			hs.logger.Warn("Skipping game record with bad standings JSON",
				zap.Int64("id", rec.ID),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close releases the underlying database handle.
func (hs *HistoryStore) Close() error {
	return hs.db.Close()
}
