package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/claims-cli/internal/blob"
	"github.com/sells-group/claims-cli/internal/docai"
	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
	"github.com/sells-group/claims-cli/internal/store"
	"github.com/sells-group/claims-cli/pkg/anthropic"
)

// Compile-time interface checks.
var (
	_ anthropic.Client = (*StubAnthropicClient)(nil)
	_ docai.Client     = (*StubDocaiClient)(nil)
	_ store.Store      = (*StubStore)(nil)
	_ blob.Gateway     = (*StubBlobGateway)(nil)
)

// --- Anthropic Stub ---

// StubAnthropicClient implements anthropic.Client with canned responses.
// Image requests get a car description, verdict prompts get a comparison
// whose license_validity tracks the expiry date embedded in the prompt, and
// anything else gets email text.
type StubAnthropicClient struct{}

var stubExpiryPattern = regexp.MustCompile(`TABLE:.*?"expiry_date":\s*"(\d{4}-\d{2}-\d{2})"`)

// CreateMessage implements anthropic.Client.
func (s *StubAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	content := ""
	hasImage := false
	for _, m := range req.Messages {
		content += m.Content
		if m.Image != nil {
			hasImage = true
		}
	}

	var responseText string
	switch {
	case hasImage:
		responseText = stubCarAnalysis
	case strings.Contains(content, "license_validity"):
		valid := false
		if m := stubExpiryPattern.FindStringSubmatch(content); m != nil {
			if t, ok := normalize.ParseDate(m[1]); ok {
				valid = !t.Before(time.Now().Truncate(24 * time.Hour))
			}
		}
		responseText = fmt.Sprintf(stubVerdictFormat, valid)
	default:
		responseText = stubEmailText
	}

	return &anthropic.MessageResponse{
		ID:         "stub-msg-001",
		Model:      req.Model,
		Content:    []anthropic.ContentBlock{{Type: "text", Text: responseText}},
		StopReason: "end_turn",
		Usage: anthropic.TokenUsage{
			InputTokens:  150,
			OutputTokens: 50,
		},
	}, nil
}

// --- Document-Understanding Stub ---

// StubDocaiClient implements docai.Client with canned field maps keyed by
// extraction model. The shapes mirror real service output: bare scalars,
// value mappings, and sequences of value mappings.
type StubDocaiClient struct {
	LicenseModel string
	ClaimModel   string
}

// ExtractFields implements docai.Client.
func (s *StubDocaiClient) ExtractFields(_ context.Context, _, extractionModel string) (map[string]any, error) {
	switch extractionModel {
	case s.ClaimModel:
		return map[string]any{
			"name":        map[string]any{"value": "Jordan Ellis"},
			"license_no":  "D1234-56789",
			"address":     []any{map[string]any{"value": "42 Harbor Lane, Portsmouth"}},
			"car_make":    map[string]any{"value": "Toyota"},
			"car_model":   map[string]any{"value": "Corolla"},
			"description": "Rear-end collision at low speed. Color: Blue, minor bumper damage.",
			"vehicle":     "Toyota Corolla sedan",
		}, nil
	default:
		return map[string]any{
			"name":         map[string]any{"value": "Jordan Ellis"},
			"license_no":   []any{map[string]any{"value": "D1234-56789"}},
			"address":      "42 Harbor Lane, Portsmouth",
			"dob":          map[string]any{"value": "14/03/1990"},
			"issue_date":   "14/03/2020",
			"expiry_date":  "14/03/2030",
			"endorsements": "",
			"sex":          "M",
			"height":       "178cm",
		}, nil
	}
}

// --- Store Stub ---

// StubStore implements store.Store in memory.
type StubStore struct {
	Records map[string]model.LicenseRecord
	Upserts int
}

// NewStubStore creates an empty in-memory store.
func NewStubStore() *StubStore {
	return &StubStore{Records: map[string]model.LicenseRecord{}}
}

// FetchLicense implements store.Store.
func (s *StubStore) FetchLicense(_ context.Context, licenseNumber string) (map[string]any, error) {
	rec, ok := s.Records[licenseNumber]
	if !ok {
		return nil, nil
	}
	return map[string]any{
		"license_number": rec.LicenseNumber,
		"full_name":      rec.FullName,
		"address":        rec.Address,
		"date_of_birth":  rec.DateOfBirth,
		"issue_date":     rec.IssueDate,
		"expiry_date":    rec.ExpiryDate,
		"endorsements":   rec.Endorsements,
		"sex":            rec.Sex,
		"height":         rec.Height,
	}, nil
}

// UpsertLicense implements store.Store.
func (s *StubStore) UpsertLicense(_ context.Context, rec model.LicenseRecord) error {
	s.Records[rec.LicenseNumber] = rec
	s.Upserts++
	return nil
}

// Migrate implements store.Store.
func (s *StubStore) Migrate(_ context.Context) error { return nil }

// Close implements store.Store.
func (s *StubStore) Close() error { return nil }

// --- Blob Stub ---

// StubBlobGateway implements blob.Gateway against a local directory.
type StubBlobGateway struct {
	Dir string
}

// Upload implements blob.Gateway.
func (g *StubBlobGateway) Upload(_ context.Context, data []byte, filename string) (string, string, error) {
	localPath := filepath.Join(g.Dir, filename)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", "", err
	}
	return filename, localPath, nil
}

// PresignGet implements blob.Gateway.
func (g *StubBlobGateway) PresignGet(_ context.Context, key string) (string, error) {
	return "https://blob.stub.local/" + key + "?sig=stub", nil
}

// --- Canned Content ---

const stubCarAnalysis = `{
  "car_type": "sedan",
  "make": "Toyota",
  "model": "Corolla",
  "visible_damage": "dented rear bumper, cracked tail light",
  "severity": "minor",
  "color": "Blue"
}`

const stubVerdictFormat = `{
  "name": {"claim_table": true},
  "license_no": {"claim_table": true, "dl_table": true},
  "address": {"claim_table": true, "dl_table": true},
  "car_make": {"claim_car": true},
  "car_model": {"claim_car": true},
  "car_color": {"claim_car": true},
  "damage_details": {"claim_car": true},
  "license_validity": %t
}`

const stubEmailText = `Dear Jordan Ellis,

Thank you for submitting your insurance claim. We have completed our review
of the documents you provided, and the details were verified against our
records. The outcome of the review is included in your claim summary.

Sincerely,
Claims Processing Team`
