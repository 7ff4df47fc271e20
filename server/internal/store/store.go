package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

// Store is the durable append-only readings log.
type Store interface {
	// Init creates the schema if it does not exist.
	Init(ctx context.Context) error

	Close() error

	// Append commits rec and returns its assigned id. It returns only
	// after the record is durably written.
	Append(ctx context.Context, rec types.Record) (int64, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]types.Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)
}

// NewStore builds a Store for the given driver ("sqlite" or "postgres").
func NewStore(driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres", "postgresql":
		return NewPostgres(dsn)
	default:
		return nil, errors.New("store: unsupported driver " + driver)
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n)
	return n, err
}

func (b *baseStore) recent(ctx context.Context, limit int) ([]types.Record, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, ts, hr, spo2, temp, status, cause, hash
		FROM readings ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	defer rows.Close()
	var out []types.Record
	for rows.Next() {
		var (
			rec    types.Record
			status string
			cause  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.HR, &rec.SpO2, &rec.Temp,
			&status, &cause, &rec.Fingerprint); err != nil {
			return nil, err
		}
		rec.Status = types.Status(status)
		rec.Cause = cause.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// nullCause maps an empty cause to SQL NULL.
func nullCause(cause string) sql.NullString {
	return sql.NullString{String: cause, Valid: cause != ""}
}
