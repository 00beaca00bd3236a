package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/pkg/anthropic"
)

type vehicleResult struct {
	Record map[string]any
	Step   string
}

const vehicleInstruction = "Analyze the car image and return car type, make, model, visible damage, severity, and color in JSON."

// imageMediaTypes maps accepted vehicle-photo extensions to their media
// type. Anything else is rejected before the model is called.
var imageMediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// stageVehicle sends the vehicle photo to the vision model and parses its
// JSON description. Unparseable output degrades to a raw_output record
// rather than failing the run.
func (p *Pipeline) stageVehicle(ctx context.Context, localPath string) (*vehicleResult, error) {
	defer logStage("vehicle", time.Now())

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(localPath)), ".")
	mediaType, ok := imageMediaTypes[ext]
	if !ok {
		return nil, eris.Errorf("vehicle: unsupported image format %q", ext)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, eris.Wrapf(err, "vehicle: read %s", localPath)
	}

	temp := 0.3
	resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Anthropic.Model,
		MaxTokens:   500,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: vehicleInstruction,
			Image: &anthropic.Image{
				MediaType: mediaType,
				Data:      base64.StdEncoding.EncodeToString(data),
			},
		}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vehicle: analyze image")
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "vehicle")

	raw := extractText(resp)
	record := map[string]any{"raw_output": raw}
	if span, ok := jsonObjectSpan(raw); ok {
		var parsed map[string]any
		if json.Unmarshal([]byte(span), &parsed) == nil {
			record = parsed
		}
	}

	return &vehicleResult{Record: record, Step: "Car Analyzed"}, nil
}
