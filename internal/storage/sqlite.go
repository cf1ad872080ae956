package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

// SQLiteStorage implements the Storage interface with a local sqlite
// file for engine state, for hosts running without Redis. Content
// catalogs come from the filesystem exactly as with RedisStorage.
type SQLiteStorage struct {
	db      *sql.DB
	logger  *slog.Logger
	dataDir string
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the sqlite database at path.
func NewSQLiteStorage(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}

	// Single writer; sqlite locks the file per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS save_states (
		slot TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create save_states table: %w", err)
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &SQLiteStorage{
		db:      db,
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite db", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) SaveState(ctx context.Context, slot string, st *engine.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal engine state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO save_states (slot, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		slot, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save engine state %q: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStorage) LoadState(ctx context.Context, slot string) (*engine.State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM save_states WHERE slot = ?`, slot).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load engine state %q: %w", slot, err)
	}
	var st engine.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal engine state %q: %w", slot, err)
	}
	return &st, nil
}

func (s *SQLiteStorage) DeleteState(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM save_states WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete engine state %q: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStorage) ListStates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot FROM save_states ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	return slots, nil
}

func (s *SQLiteStorage) DramaCatalog(ctx context.Context) ([]*drama.Template, error) {
	return loadDramaCatalog(s.dataDir, s.logger)
}

func (s *SQLiteStorage) InterviewCatalog(ctx context.Context) ([]*interview.Template, error) {
	return loadInterviewCatalog(s.dataDir, s.logger)
}
