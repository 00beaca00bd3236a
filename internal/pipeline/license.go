package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
	"github.com/sells-group/claims-cli/internal/store"
)

type licenseResult struct {
	Record     *model.LicenseRecord
	Historical map[string]any
	Step       string
}

// stageLicense extracts the driver's license fields, looks up any historical
// record for the license number, and upserts the normalized record. A
// missing or malformed license number skips both the lookup and the upsert;
// store failures are logged and do not abort the run.
func (p *Pipeline) stageLicense(ctx context.Context, key string) (*licenseResult, error) {
	defer logStage("license", time.Now())
	log := zap.L()

	url, err := p.blob.PresignGet(ctx, key)
	if err != nil {
		return nil, eris.Wrap(err, "license: presign")
	}

	fields, err := p.docai.ExtractFields(ctx, url, p.cfg.Docai.LicenseModel)
	if err != nil {
		return nil, eris.Wrap(err, "license: extract fields")
	}

	rec := &model.LicenseRecord{
		FullName:      normalize.ScalarString(fields["name"]),
		LicenseNumber: normalize.ScalarString(fields["license_no"]),
		Address:       normalize.ScalarString(fields["address"]),
		DateOfBirth:   normalize.ParseDateISO(normalize.ScalarString(fields["dob"])),
		IssueDate:     normalize.ParseDateISO(normalize.ScalarString(fields["issue_date"])),
		ExpiryDate:    normalize.ParseDateISO(normalize.ScalarString(fields["expiry_date"])),
		Endorsements:  normalize.ScalarString(fields["endorsements"]),
		Sex:           normalize.ScalarString(fields["sex"]),
		Height:        normalize.ScalarString(fields["height"]),
	}
	if rec.FullName == "" {
		rec.FullName = "Unknown"
	}

	if !store.ValidLicenseNumber(rec.LicenseNumber) {
		log.Warn("license: number missing or malformed, skipping store",
			zap.String("license_number", rec.LicenseNumber))
		return &licenseResult{
			Record: rec,
			Step:   "DL Extracted (Not Stored: Missing License Number)",
		}, nil
	}

	historical, err := p.store.FetchLicense(ctx, rec.LicenseNumber)
	if err != nil {
		log.Warn("license: historical lookup failed",
			zap.String("license_number", rec.LicenseNumber), zap.Error(err))
		historical = nil
	}

	if err := p.store.UpsertLicense(ctx, *rec); err != nil {
		log.Warn("license: upsert failed",
			zap.String("license_number", rec.LicenseNumber), zap.Error(err))
	}

	return &licenseResult{
		Record:     rec,
		Historical: historical,
		Step:       "Driver's License Extracted & Stored",
	}, nil
}
