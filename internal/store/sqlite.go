package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"wonders/internal/engine"
)

// SQLite archives every accepted snapshot; Latest reads the highest epoch.
type SQLite struct {
	conn *sqlx.DB
	log  *zap.Logger
}

// OpenSQLite opens or creates a database at path. ":memory:" gives a
// private in-process database.
func OpenSQLite(path string, log *zap.Logger) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn, log: log}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		table_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (table_id, epoch)
	);`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Save(ctx context.Context, tableID string, snap *engine.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var cur sql.NullInt64
	if err := tx.GetContext(ctx, &cur, "SELECT MAX(epoch) FROM snapshots WHERE table_id = ?", tableID); err != nil {
		return fmt.Errorf("read epoch: %w", err)
	}
	if cur.Valid && snap.Epoch <= uint64(cur.Int64) {
		return stale(uint64(cur.Int64), snap.Epoch)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (table_id, epoch, data) VALUES (?, ?, ?)",
		tableID, snap.Epoch, string(data),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("snapshot archived", zap.String("table", tableID), zap.Uint64("epoch", snap.Epoch))
	return nil
}

func (s *SQLite) Latest(ctx context.Context, tableID string) (*engine.Snapshot, error) {
	var data string
	err := s.conn.GetContext(ctx, &data,
		"SELECT data FROM snapshots WHERE table_id = ? ORDER BY epoch DESC LIMIT 1", tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode([]byte(data))
}

// History returns the archived epochs of a table, oldest first.
func (s *SQLite) History(ctx context.Context, tableID string) ([]uint64, error) {
	var epochs []uint64
	err := s.conn.SelectContext(ctx, &epochs,
		"SELECT epoch FROM snapshots WHERE table_id = ? ORDER BY epoch", tableID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return epochs, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}
