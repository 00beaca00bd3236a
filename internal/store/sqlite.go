package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/claims-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Dates are stored
// as ISO calendar-date strings.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS drivers_licenses (
	license_number TEXT PRIMARY KEY,
	full_name      TEXT NOT NULL DEFAULT '',
	address        TEXT,
	date_of_birth  TEXT,
	issue_date     TEXT,
	expiry_date    TEXT,
	endorsements   TEXT NOT NULL DEFAULT '',
	sex            TEXT,
	height         TEXT,
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FetchLicense(ctx context.Context, licenseNumber string) (map[string]any, error) {
	if !ValidLicenseNumber(licenseNumber) {
		return nil, nil
	}

	var (
		fullName, endorsements     string
		address, sex, height       sql.NullString
		dob, issueDate, expiryDate sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT full_name, address, date_of_birth, issue_date, expiry_date, endorsements, sex, height
		 FROM drivers_licenses WHERE license_number = ?`,
		licenseNumber,
	).Scan(&fullName, &address, &dob, &issueDate, &expiryDate, &endorsements, &sex, &height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: fetch license %s", licenseNumber)
	}

	return map[string]any{
		"license_number": licenseNumber,
		"full_name":      fullName,
		"address":        nullableStr(address),
		"date_of_birth":  nullableStr(dob),
		"issue_date":     nullableStr(issueDate),
		"expiry_date":    nullableStr(expiryDate),
		"endorsements":   endorsements,
		"sex":            nullableStr(sex),
		"height":         nullableStr(height),
	}, nil
}

func (s *SQLiteStore) UpsertLicense(ctx context.Context, rec model.LicenseRecord) error {
	if !ValidLicenseNumber(rec.LicenseNumber) {
		return eris.Errorf("sqlite: invalid license number %q", rec.LicenseNumber)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drivers_licenses
		 (license_number, full_name, address, date_of_birth, issue_date, expiry_date, endorsements, sex, height, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (license_number) DO UPDATE SET
		   full_name = excluded.full_name, address = excluded.address,
		   date_of_birth = excluded.date_of_birth, issue_date = excluded.issue_date,
		   expiry_date = excluded.expiry_date, endorsements = excluded.endorsements,
		   sex = excluded.sex, height = excluded.height, updated_at = excluded.updated_at`,
		rec.LicenseNumber, rec.FullName, nullStr(rec.Address),
		nullDate(rec.DateOfBirth), nullDate(rec.IssueDate), nullDate(rec.ExpiryDate),
		rec.Endorsements, nullStr(rec.Sex), nullStr(rec.Height), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert license %s", rec.LicenseNumber)
}

func nullableStr(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
