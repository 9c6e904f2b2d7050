package policy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists policy records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const policyColumns = `id, version, status, config_ref, description, activation_delay_ms,
	created_at, staged_at, activated_at, deprecated_at, created_by`

func (s *PostgresStore) Insert(ctx context.Context, p *Policy) error {
	query := `
		INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Version, string(p.Status), p.ConfigRef, p.Description,
		p.ActivationDelay.Milliseconds(),
		p.CreatedAt, nullTime(p.StagedAt), nullTime(p.ActivatedAt), nullTime(p.DeprecatedAt),
		p.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, version int) (*Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE version = $1`
	p, err := scanPolicy(s.db.QueryRowContext(ctx, query, version))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Policy) error {
	query := `
		UPDATE policies SET
			status = $2,
			activation_delay_ms = $3,
			staged_at = $4,
			activated_at = $5,
			deprecated_at = $6
		WHERE version = $1
	`
	_, err := s.db.ExecContext(ctx, query,
		p.Version, string(p.Status), p.ActivationDelay.Milliseconds(),
		nullTime(p.StagedAt), nullTime(p.ActivatedAt), nullTime(p.DeprecatedAt),
	)
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) MaxVersion(ctx context.Context) (int, error) {
	var maxVersion int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM policies`).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("max policy version: %w", err)
	}
	return maxVersion, nil
}

func (s *PostgresStore) ActiveVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM policies WHERE status = $1`, string(StatusActive),
	).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("active policy version: %w", err)
	}
	return version, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Policy, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+policyColumns+` FROM policies ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var policies []*Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return policies, nil
}

type policyRow interface {
	Scan(dest ...any) error
}

func scanPolicy(row policyRow) (*Policy, error) {
	var p Policy
	var id uuid.UUID
	var status string
	var delayMillis int64
	var stagedAt, activatedAt, deprecatedAt sql.NullTime
	if err := row.Scan(
		&id, &p.Version, &status, &p.ConfigRef, &p.Description, &delayMillis,
		&p.CreatedAt, &stagedAt, &activatedAt, &deprecatedAt, &p.CreatedBy,
	); err != nil {
		return nil, err
	}
	p.ID = id
	p.Status = Status(status)
	p.ActivationDelay = time.Duration(delayMillis) * time.Millisecond
	if stagedAt.Valid {
		p.StagedAt = stagedAt.Time
	}
	if activatedAt.Valid {
		p.ActivatedAt = activatedAt.Time
	}
	if deprecatedAt.Valid {
		p.DeprecatedAt = deprecatedAt.Time
	}
	return &p, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
