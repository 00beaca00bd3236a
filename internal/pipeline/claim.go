package pipeline

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/normalize"
)

type claimResult struct {
	Record map[string]any
	Step   string
}

// colorPattern pulls an embedded "Color: <x>" annotation out of free text,
// stopping at the first comma or end of input.
var colorPattern = regexp.MustCompile(`(?i)Color:\s*(.+?)(,|$)`)

// stageClaim extracts structured fields from the claim document and derives
// a car_color field from the description or vehicle text when present.
func (p *Pipeline) stageClaim(ctx context.Context, key string) (*claimResult, error) {
	defer logStage("claim", time.Now())

	url, err := p.blob.PresignGet(ctx, key)
	if err != nil {
		return nil, eris.Wrap(err, "claim: presign")
	}

	fields, err := p.docai.ExtractFields(ctx, url, p.cfg.Docai.ClaimModel)
	if err != nil {
		return nil, eris.Wrap(err, "claim: extract fields")
	}

	// The claim form has no dedicated color field; scan description first,
	// then the vehicle text.
	for _, name := range []string{"description", "vehicle"} {
		text := normalize.ScalarString(fields[name])
		if m := colorPattern.FindStringSubmatch(text); m != nil {
			fields["car_color"] = []any{map[string]any{"value": strings.TrimSpace(m[1])}}
			break
		}
	}

	return &claimResult{Record: fields, Step: "Claim Extracted"}, nil
}
