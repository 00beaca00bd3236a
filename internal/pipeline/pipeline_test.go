package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claims-cli/internal/config"
	"github.com/sells-group/claims-cli/internal/docai"
	"github.com/sells-group/claims-cli/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Docai: docai.Config{
			LicenseModel: "license-data-v1",
			ClaimModel:   "claims-data-v1",
		},
		Anthropic: config.AnthropicConfig{
			Model: "claude-haiku-4-5-20251001",
		},
	}
}

func testSubmission() model.Submission {
	return model.Submission{
		License: model.Document{Name: "license.png", Data: []byte("license-bytes")},
		Claim:   model.Document{Name: "claim.pdf", Data: []byte("claim-bytes")},
		Vehicle: model.Document{Name: "car.jpg", Data: []byte("image-bytes")},
	}
}

func newTestPipeline(t *testing.T, st *StubStore) *Pipeline {
	t.Helper()
	cfg := testConfig()
	return New(cfg, st,
		&StubBlobGateway{Dir: t.TempDir()},
		&StubDocaiClient{LicenseModel: cfg.Docai.LicenseModel, ClaimModel: cfg.Docai.ClaimModel},
		&StubAnthropicClient{},
	)
}

func TestPipeline_Run_Accepted(t *testing.T) {
	st := NewStubStore()
	st.Records["D1234-56789"] = model.LicenseRecord{
		FullName:      "Jordan Ellis",
		LicenseNumber: "D1234-56789",
		Address:       "42 Harbor Lane, Portsmouth",
		DateOfBirth:   "1990-03-14",
		IssueDate:     "2020-03-14",
		ExpiryDate:    "2031-01-01",
	}

	state, err := newTestPipeline(t, st).Run(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Uploaded",
		"Driver's License Extracted & Stored",
		"Claim Extracted",
		"Car Analyzed",
		"Compared & Emailed",
	}, state.Steps)

	require.NotNil(t, state.License)
	assert.Equal(t, "Jordan Ellis", state.License.FullName)
	assert.Equal(t, "D1234-56789", state.License.LicenseNumber)
	assert.Equal(t, "1990-03-14", state.License.DateOfBirth)
	assert.Equal(t, "2030-03-14", state.License.ExpiryDate)

	require.NotNil(t, state.Historical)
	assert.Equal(t, "2031-01-01", state.Historical["expiry_date"])
	assert.Equal(t, 1, st.Upserts)

	// Color annotation pulled out of the description text.
	assert.Equal(t, []any{map[string]any{"value": "Blue"}}, state.Claim["car_color"])

	// Vision output parsed as JSON, not wrapped in raw_output.
	assert.Equal(t, "Blue", state.Vehicle["color"])
	assert.NotContains(t, state.Vehicle, "raw_output")

	require.NotNil(t, state.Comparison)
	assert.True(t, state.Comparison.LicenseValidity)
	assert.Equal(t, model.DecisionAccepted, state.Decision)
	assert.NotEmpty(t, state.Email)
}

func TestPipeline_Run_ExpiredLicenseRejected(t *testing.T) {
	st := NewStubStore()
	st.Records["D1234-56789"] = model.LicenseRecord{
		FullName:      "Jordan Ellis",
		LicenseNumber: "D1234-56789",
		ExpiryDate:    "2019-06-01",
	}

	state, err := newTestPipeline(t, st).Run(context.Background(), testSubmission())
	require.NoError(t, err)

	require.NotNil(t, state.Comparison)
	assert.False(t, state.Comparison.LicenseValidity)
	assert.True(t, state.Comparison.Name["claim_table"])
	assert.Equal(t, model.DecisionRejected, state.Decision)
}

func TestPipeline_Run_NoHistoricalRecord(t *testing.T) {
	st := NewStubStore()

	state, err := newTestPipeline(t, st).Run(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Nil(t, state.Historical)
	assert.Equal(t, 1, st.Upserts)
	assert.Equal(t, model.DecisionRejected, state.Decision)
}

// docaiFunc adapts a function to docai.Client for per-test field maps.
type docaiFunc func(ctx context.Context, documentURL, extractionModel string) (map[string]any, error)

func (f docaiFunc) ExtractFields(ctx context.Context, documentURL, extractionModel string) (map[string]any, error) {
	return f(ctx, documentURL, extractionModel)
}

func TestPipeline_Run_InvalidLicenseNumberSkipsStore(t *testing.T) {
	cfg := testConfig()
	st := NewStubStore()
	stub := &StubDocaiClient{LicenseModel: cfg.Docai.LicenseModel, ClaimModel: cfg.Docai.ClaimModel}

	dc := docaiFunc(func(ctx context.Context, documentURL, extractionModel string) (map[string]any, error) {
		fields, err := stub.ExtractFields(ctx, documentURL, extractionModel)
		if err != nil {
			return nil, err
		}
		if extractionModel == cfg.Docai.LicenseModel {
			fields["license_no"] = "not a valid number!"
		}
		return fields, nil
	})

	p := New(cfg, st, &StubBlobGateway{Dir: t.TempDir()}, dc, &StubAnthropicClient{})

	state, err := p.Run(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Contains(t, state.Steps, "DL Extracted (Not Stored: Missing License Number)")
	assert.Equal(t, 0, st.Upserts)
	assert.Nil(t, state.Historical)

	// Extraction still lands in the run state even when nothing is stored.
	require.NotNil(t, state.License)
	assert.Equal(t, "Jordan Ellis", state.License.FullName)
}

func TestPipeline_Run_MissingNameDefaultsUnknown(t *testing.T) {
	cfg := testConfig()
	stub := &StubDocaiClient{LicenseModel: cfg.Docai.LicenseModel, ClaimModel: cfg.Docai.ClaimModel}

	dc := docaiFunc(func(ctx context.Context, documentURL, extractionModel string) (map[string]any, error) {
		fields, err := stub.ExtractFields(ctx, documentURL, extractionModel)
		if err != nil {
			return nil, err
		}
		if extractionModel == cfg.Docai.LicenseModel {
			delete(fields, "name")
		}
		return fields, nil
	})

	p := New(cfg, NewStubStore(), &StubBlobGateway{Dir: t.TempDir()}, dc, &StubAnthropicClient{})

	state, err := p.Run(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "Unknown", state.License.FullName)
}

func TestPipeline_Run_MissingDocument(t *testing.T) {
	sub := testSubmission()
	sub.Vehicle.Data = nil

	_, err := newTestPipeline(t, NewStubStore()).Run(context.Background(), sub)
	assert.Error(t, err)
}

func TestPipeline_Run_UnsupportedImageFormat(t *testing.T) {
	sub := testSubmission()
	sub.Vehicle.Name = "car.bmp"

	_, err := newTestPipeline(t, NewStubStore()).Run(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestObjectName(t *testing.T) {
	a := objectName("photo.jpg")
	b := objectName("photo.jpg")

	assert.NotEqual(t, a, b)
	assert.True(t, len(a) > len("photo.jpg"))
	assert.Contains(t, a, "_photo.jpg")
}
