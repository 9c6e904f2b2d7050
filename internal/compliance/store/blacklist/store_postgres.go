package blacklist

import (
	"context"
	"database/sql"
	"fmt"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// PostgresStore persists blacklist entries in PostgreSQL. Pure I/O: expiry
// interpretation stays in the rule, so entries are returned as stored.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, addr domain.Address) (*rules.BlacklistEntry, error) {
	query := `
		SELECT address, reason, expires_at, created_at, created_by
		FROM blacklist_entries
		WHERE address = $1
	`
	var entry rules.BlacklistEntry
	var expiresAt sql.NullTime
	var address string
	err := s.db.QueryRowContext(ctx, query, addr.String()).Scan(
		&address, &entry.Reason, &expiresAt, &entry.CreatedAt, &entry.CreatedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get blacklist entry: %w", err)
	}
	entry.Address = domain.Address(address)
	if expiresAt.Valid {
		entry.ExpiresAt = expiresAt.Time
	}
	return &entry, nil
}

func (s *PostgresStore) Add(ctx context.Context, entry rules.BlacklistEntry) error {
	query := `
		INSERT INTO blacklist_entries (address, reason, expires_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			reason = EXCLUDED.reason,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at,
			created_by = EXCLUDED.created_by
	`
	var expiresAt sql.NullTime
	if !entry.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: entry.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.Address.String(), entry.Reason, expiresAt, entry.CreatedAt, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("add blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, addr domain.Address) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blacklist_entries WHERE address = $1`, addr.String())
	if err != nil {
		return fmt.Errorf("remove blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]rules.BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, reason, expires_at, created_at, created_by
		FROM blacklist_entries
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist entries: %w", err)
	}
	defer rows.Close()

	var entries []rules.BlacklistEntry
	for rows.Next() {
		var entry rules.BlacklistEntry
		var expiresAt sql.NullTime
		var address string
		if err := rows.Scan(&address, &entry.Reason, &expiresAt, &entry.CreatedAt, &entry.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entry.Address = domain.Address(address)
		if expiresAt.Valid {
			entry.ExpiresAt = expiresAt.Time
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist entries: %w", err)
	}
	return entries, nil
}
