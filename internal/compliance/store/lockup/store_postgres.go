package lockup

import (
	"context"
	"database/sql"
	"fmt"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// PostgresStore persists lockup records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, addr domain.Address) (*rules.LockupRecord, error) {
	query := `
		SELECT address, locked_until, locked_amount, reason, created_at, created_by
		FROM lockup_records
		WHERE address = $1
	`
	var record rules.LockupRecord
	var address string
	var lockedAmount int64
	err := s.db.QueryRowContext(ctx, query, addr.String()).Scan(
		&address, &record.LockedUntil, &lockedAmount, &record.Reason, &record.CreatedAt, &record.CreatedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lockup record: %w", err)
	}
	record.Address = domain.Address(address)
	record.LockedAmount = uint64(lockedAmount)
	return &record, nil
}

func (s *PostgresStore) Set(ctx context.Context, record rules.LockupRecord) error {
	query := `
		INSERT INTO lockup_records (address, locked_until, locked_amount, reason, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			locked_until = EXCLUDED.locked_until,
			locked_amount = EXCLUDED.locked_amount,
			reason = EXCLUDED.reason,
			created_at = EXCLUDED.created_at,
			created_by = EXCLUDED.created_by
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Address.String(), record.LockedUntil, int64(record.LockedAmount),
		record.Reason, record.CreatedAt, record.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("set lockup record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, addr domain.Address) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lockup_records WHERE address = $1`, addr.String())
	if err != nil {
		return fmt.Errorf("remove lockup record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]rules.LockupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, locked_until, locked_amount, reason, created_at, created_by
		FROM lockup_records
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list lockup records: %w", err)
	}
	defer rows.Close()

	var records []rules.LockupRecord
	for rows.Next() {
		var record rules.LockupRecord
		var address string
		var lockedAmount int64
		if err := rows.Scan(&address, &record.LockedUntil, &lockedAmount, &record.Reason, &record.CreatedAt, &record.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan lockup record: %w", err)
		}
		record.Address = domain.Address(address)
		record.LockedAmount = uint64(lockedAmount)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lockup records: %w", err)
	}
	return records, nil
}
