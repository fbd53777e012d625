package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// SQLSlotRepository keeps client state slots in a single client_state table.
type SQLSlotRepository struct {
	db          *sql.DB
	driver      string
	maxAttempts int
}

func NewSQLSlotRepository(db *sql.DB, driver string) *SQLSlotRepository {
	return &SQLSlotRepository{db: db, driver: driver, maxAttempts: 3}
}

func (r *SQLSlotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS client_state (
			slot TEXT NOT NULL PRIMARY KEY,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`
	if r.driver == DriverMySQL {
		query = `
		CREATE TABLE IF NOT EXISTS client_state (
			slot VARCHAR(64) NOT NULL PRIMARY KEY,
			version INT NOT NULL,
			payload MEDIUMBLOB NOT NULL,
			updated_at BIGINT NOT NULL
		)`
	}

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating client_state table: %w", err)
	}
	return nil
}

func (r *SQLSlotRepository) FindBySlot(ctx context.Context, slot string) (*state.Record, error) {
	query := `SELECT slot, version, payload, updated_at FROM client_state WHERE slot = ?`

	var rec state.Record
	var updatedAt int64
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&rec.Slot, &rec.Version, &rec.Payload, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("state slot %q not found", slot))
	}
	if err != nil {
		return nil, fmt.Errorf("querying state slot: %w", err)
	}

	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &rec, nil
}

func (r *SQLSlotRepository) Save(ctx context.Context, rec state.Record) error {
	query := `
		INSERT INTO client_state (slot, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`
	if r.driver == DriverMySQL {
		query = `
		INSERT INTO client_state (slot, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			version = VALUES(version),
			payload = VALUES(payload),
			updated_at = VALUES(updated_at)`
	}

	backoffs := []time.Duration{0, 50 * time.Millisecond, 100 * time.Millisecond}

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		_, err = r.db.ExecContext(ctx, query, rec.Slot, rec.Version, rec.Payload, rec.UpdatedAt.UTC().UnixMilli())
		if err == nil {
			return nil
		}
		if !isDeadlockError(err) || attempt == r.maxAttempts {
			break
		}
		time.Sleep(backoffs[attempt%len(backoffs)])
	}

	return fmt.Errorf("saving state slot %q: %w", rec.Slot, err)
}

func (r *SQLSlotRepository) Delete(ctx context.Context, slot string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM client_state WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("deleting state slot %q: %w", slot, err)
	}
	return nil
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
