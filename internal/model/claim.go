package model

// Document is one uploaded file in a claim submission.
type Document struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Submission holds the three documents that make up one claim.
type Submission struct {
	License Document `json:"license"`
	Claim   Document `json:"claim"`
	Vehicle Document `json:"vehicle"`
}

// LicenseRecord is the normalized output of license extraction. Dates are
// ISO-8601 calendar-date strings, or empty when the source field could not
// be parsed.
type LicenseRecord struct {
	FullName      string `json:"full_name"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address"`
	DateOfBirth   string `json:"date_of_birth"`
	IssueDate     string `json:"issue_date"`
	ExpiryDate    string `json:"expiry_date"`
	Endorsements  string `json:"endorsements"`
	Sex           string `json:"sex"`
	Height        string `json:"height"`
}

// RunState is the mutable context threaded through one pipeline run.
// Stages return partial results; the orchestrator merges them in and
// appends to Steps, which is write-only and order-preserving.
type RunState struct {
	LicenseKey   string `json:"license_key"`
	ClaimKey     string `json:"claim_key"`
	VehicleKey   string `json:"vehicle_key"`
	VehicleLocal string `json:"vehicle_local"`

	License    *LicenseRecord `json:"license_record"`
	Historical map[string]any `json:"historical_record,omitempty"`
	Claim      map[string]any `json:"claim_record"`
	Vehicle    map[string]any `json:"vehicle_record"`

	Comparison *Comparison `json:"comparison"`
	Decision   Decision    `json:"decision"`
	Email      string      `json:"email"`

	Steps []string `json:"steps"`
}
