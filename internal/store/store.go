package store

import (
	"context"
	"regexp"

	"github.com/sells-group/claims-cli/internal/model"
)

// licenseNumberPattern is the strict format a license number must satisfy
// before it is used in any lookup or persistence key.
var licenseNumberPattern = regexp.MustCompile(`^[\w-]+$`)

// ValidLicenseNumber reports whether a license number is safe to use as a
// persistence key: letters, digits, hyphens, and underscores only.
func ValidLicenseNumber(n string) bool {
	return n != "" && licenseNumberPattern.MatchString(n)
}

// Store is the keyed license-record table behind the pipeline. Rows are
// merged on license number; fetch canonicalizes dates to ISO strings.
type Store interface {
	// FetchLicense returns the stored row for a license number, or nil
	// when no row exists. Date values come back as ISO calendar-date
	// strings.
	FetchLicense(ctx context.Context, licenseNumber string) (map[string]any, error)

	// UpsertLicense merges a freshly extracted record into the table,
	// updating the matched row or inserting a new one.
	UpsertLicense(ctx context.Context, rec model.LicenseRecord) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
