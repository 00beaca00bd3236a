// Package pipeline runs one claim submission through the fixed stage
// sequence: upload, license extraction, claim extraction, vehicle image
// analysis, and reconciliation.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/blob"
	"github.com/sells-group/claims-cli/internal/config"
	"github.com/sells-group/claims-cli/internal/docai"
	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/store"
	"github.com/sells-group/claims-cli/pkg/anthropic"
)

// Pipeline orchestrates the five claim-processing stages.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
	blob  blob.Gateway
	docai docai.Client
	ai    anthropic.Client
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, bg blob.Gateway, dc docai.Client, aiClient anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: st,
		blob:  bg,
		docai: dc,
		ai:    aiClient,
	}
}

// Run executes the full pipeline for a single submission. Stages run
// strictly in sequence; a stage failure aborts the run and no partial
// state is returned. Each stage appends exactly one entry to the step log.
func (p *Pipeline) Run(ctx context.Context, sub model.Submission) (*model.RunState, error) {
	log := zap.L().With(zap.String("claim_doc", sub.Claim.Name))
	log.Info("pipeline: starting claim processing")

	if len(sub.License.Data) == 0 || len(sub.Claim.Data) == 0 || len(sub.Vehicle.Data) == 0 {
		return nil, eris.New("pipeline: submission requires license, claim, and vehicle documents")
	}

	state := &model.RunState{}

	// Stage 1: upload all three documents.
	up, err := p.stageUpload(ctx, sub)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: upload")
	}
	state.LicenseKey = up.LicenseKey
	state.ClaimKey = up.ClaimKey
	state.VehicleKey = up.VehicleKey
	state.VehicleLocal = up.VehicleLocal
	state.Steps = append(state.Steps, up.Step)

	// Stage 2: license extraction + historical lookup + merge-upsert.
	lic, err := p.stageLicense(ctx, state.LicenseKey)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract license")
	}
	state.License = lic.Record
	state.Historical = lic.Historical
	state.Steps = append(state.Steps, lic.Step)

	// Stage 3: claim document extraction.
	cl, err := p.stageClaim(ctx, state.ClaimKey)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract claim")
	}
	state.Claim = cl.Record
	state.Steps = append(state.Steps, cl.Step)

	// Stage 4: vehicle image analysis.
	veh, err := p.stageVehicle(ctx, state.VehicleLocal)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: analyze vehicle")
	}
	state.Vehicle = veh.Record
	state.Steps = append(state.Steps, veh.Step)

	// Stage 5: reconcile, decide, draft the email.
	cmp, err := p.stageCompare(ctx, state)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: compare")
	}
	state.Comparison = cmp.Comparison
	state.Decision = cmp.Decision
	state.Email = cmp.Email
	state.Steps = append(state.Steps, cmp.Step)

	log.Info("pipeline: claim processing complete",
		zap.String("decision", string(state.Decision)),
		zap.Strings("steps", state.Steps),
	)

	return state, nil
}

// logStage records a stage completion with its duration.
func logStage(name string, start time.Time) {
	zap.L().Info("pipeline: stage complete",
		zap.String("stage", name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
