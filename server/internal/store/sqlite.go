package store

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

type sqliteStore struct {
	baseStore
}

// NewSQLite opens (or creates) a sqlite-backed store. The connection pool
// is capped at one connection so concurrent appends queue behind a single
// writer instead of hitting SQLITE_BUSY.
func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:vitaltrace.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			hr INTEGER NOT NULL,
			spo2 REAL NOT NULL,
			temp REAL NOT NULL,
			status TEXT NOT NULL,
			cause TEXT,
			hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_hash ON readings(hash)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Append(ctx context.Context, rec types.Record) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (ts, hr, spo2, temp, status, cause, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.HR, rec.SpO2, rec.Temp,
		string(rec.Status), nullCause(rec.Cause), rec.Fingerprint,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]types.Record, error) {
	return s.recent(ctx, limit)
}
