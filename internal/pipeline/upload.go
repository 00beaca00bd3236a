package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/claims-cli/internal/model"
)

type uploadResult struct {
	LicenseKey   string
	ClaimKey     string
	VehicleKey   string
	VehicleLocal string
	Step         string
}

// stageUpload pushes all three documents to object storage concurrently.
// Object keys are randomized to keep uploads from different submissions
// from colliding on filename.
func (p *Pipeline) stageUpload(ctx context.Context, sub model.Submission) (*uploadResult, error) {
	defer logStage("upload", time.Now())

	res := &uploadResult{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		key, _, err := p.blob.Upload(gCtx, sub.License.Data, objectName(sub.License.Name))
		res.LicenseKey = key
		return err
	})
	g.Go(func() error {
		key, _, err := p.blob.Upload(gCtx, sub.Claim.Data, objectName(sub.Claim.Name))
		res.ClaimKey = key
		return err
	})
	g.Go(func() error {
		key, local, err := p.blob.Upload(gCtx, sub.Vehicle.Data, objectName(sub.Vehicle.Name))
		res.VehicleKey = key
		res.VehicleLocal = local
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Step = "Uploaded"
	return res, nil
}

// objectName prefixes the original filename with a random UUID, preserving
// the extension for media-type detection downstream.
func objectName(filename string) string {
	return uuid.New().String() + "_" + filename
}
