package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/db"
	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS drivers_licenses (
	license_number TEXT PRIMARY KEY,
	full_name      TEXT NOT NULL DEFAULT '',
	address        TEXT,
	date_of_birth  DATE,
	issue_date     DATE,
	expiry_date    DATE,
	endorsements   TEXT NOT NULL DEFAULT '',
	sex            TEXT,
	height         TEXT,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// licenseColumns is the insert/update column order for drivers_licenses.
var licenseColumns = []string{
	"license_number", "full_name", "address",
	"date_of_birth", "issue_date", "expiry_date",
	"endorsements", "sex", "height", "updated_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) FetchLicense(ctx context.Context, licenseNumber string) (map[string]any, error) {
	if !ValidLicenseNumber(licenseNumber) {
		return nil, nil
	}

	var (
		fullName, endorsements     string
		address, sex, height       *string
		dob, issueDate, expiryDate *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT full_name, address, date_of_birth, issue_date, expiry_date, endorsements, sex, height
		 FROM drivers_licenses WHERE license_number = $1`,
		licenseNumber,
	).Scan(&fullName, &address, &dob, &issueDate, &expiryDate, &endorsements, &sex, &height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: fetch license %s", licenseNumber)
	}

	row := map[string]any{
		"license_number": licenseNumber,
		"full_name":      fullName,
		"address":        strOrNil(address),
		"date_of_birth":  timeOrNil(dob),
		"issue_date":     timeOrNil(issueDate),
		"expiry_date":    timeOrNil(expiryDate),
		"endorsements":   endorsements,
		"sex":            strOrNil(sex),
		"height":         strOrNil(height),
	}
	return normalize.Dates(row), nil
}

func (s *PostgresStore) UpsertLicense(ctx context.Context, rec model.LicenseRecord) error {
	if !ValidLicenseNumber(rec.LicenseNumber) {
		return eris.Errorf("postgres: invalid license number %q", rec.LicenseNumber)
	}

	err := db.Upsert(ctx, s.pool, db.UpsertConfig{
		Table:        "drivers_licenses",
		Columns:      licenseColumns,
		ConflictKeys: []string{"license_number"},
	}, []any{
		rec.LicenseNumber, rec.FullName, nullStr(rec.Address),
		nullDate(rec.DateOfBirth), nullDate(rec.IssueDate), nullDate(rec.ExpiryDate),
		rec.Endorsements, nullStr(rec.Sex), nullStr(rec.Height), time.Now().UTC(),
	})
	return eris.Wrapf(err, "postgres: upsert license %s", rec.LicenseNumber)
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullStr maps empty strings to SQL NULL for optional text columns.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullDate maps empty ISO date strings to SQL NULL.
func nullDate(s string) any {
	if s == "" {
		return nil
	}
	return s
}
