package store

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/vitaltrace?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id BIGSERIAL PRIMARY KEY,
			ts DOUBLE PRECISION NOT NULL,
			hr INTEGER NOT NULL,
			spo2 DOUBLE PRECISION NOT NULL,
			temp DOUBLE PRECISION NOT NULL,
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

func (s *postgresStore) Append(ctx context.Context, rec types.Record) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO readings (ts, hr, spo2, temp, status, cause, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		rec.Timestamp, rec.HR, rec.SpO2, rec.Temp,
		string(rec.Status), nullCause(rec.Cause), rec.Fingerprint,
	).Scan(&id)
	return id, err
}

func (s *postgresStore) Recent(ctx context.Context, limit int) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, hr, spo2, temp, status, cause, hash
		FROM readings ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}
