package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
	"github.com/sells-group/claims-cli/pkg/anthropic"
)

type compareResult struct {
	Comparison *model.Comparison
	Decision   model.Decision
	Email      string
	Step       string
}

const comparePromptFormat = `Compare the following insurance claim sources field by field and return JSON only, exactly in this shape:

{
  "name": {"claim_table": bool},
  "license_no": {"claim_table": bool, "dl_table": bool},
  "address": {"claim_table": bool, "dl_table": bool},
  "car_make": {"claim_car": bool},
  "car_model": {"claim_car": bool},
  "car_color": {"claim_car": bool},
  "damage_details": {"claim_car": bool},
  "license_validity": bool
}

Field rules:
- name: does the claimant name on the claim match the stored table record?
- license_no: does the license number on the claim match the table, and the driver's license match the table?
- address: does the address on the claim match the table, and the driver's license match the table?
- car_make, car_model, car_color, damage_details: does the claim match the car image analysis?
- license_validity: is the expiry_date in the table on or after today's date (%s)?

Sources:
DL: %s
CLAIM: %s
CAR: %s
TABLE: %s`

const emailPromptFormat = `Write a short professional email to the claimant summarizing the outcome of their insurance claim review. Do not include placeholders.

Comparison results:
%s

Decision: %s`

// stageCompare reconciles the three extractions against the stored record,
// applies the strict all-match decision rule, and drafts the notification
// email. Unparseable verdict output degrades to an all-false comparison.
func (p *Pipeline) stageCompare(ctx context.Context, state *model.RunState) (*compareResult, error) {
	defer logStage("compare", time.Now())

	prompt := fmt.Sprintf(comparePromptFormat,
		time.Now().Format(normalize.ISODate),
		normalize.MarshalWithDates(state.License),
		normalize.MarshalWithDates(state.Claim),
		normalize.MarshalWithDates(state.Vehicle),
		normalize.MarshalWithDates(state.Historical),
	)

	temp := 0.2
	resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Anthropic.Model,
		MaxTokens:   1200,
		Temperature: &temp,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "compare: verdict call")
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "compare")

	raw := map[string]any{}
	text := extractText(resp)
	if span, ok := jsonObjectSpan(text); ok {
		if err := json.Unmarshal([]byte(span), &raw); err != nil {
			zap.L().Warn("compare: verdict output not valid JSON", zap.Error(err))
		}
	} else {
		zap.L().Warn("compare: no JSON object in verdict output")
	}

	comparison := model.NormalizeComparison(raw)
	decision := comparison.Decide()

	email, err := p.draftEmail(ctx, comparison, decision)
	if err != nil {
		return nil, eris.Wrap(err, "compare: email call")
	}

	return &compareResult{
		Comparison: comparison,
		Decision:   decision,
		Email:      email,
		Step:       "Compared & Emailed",
	}, nil
}

func (p *Pipeline) draftEmail(ctx context.Context, comparison *model.Comparison, decision model.Decision) (string, error) {
	prompt := fmt.Sprintf(emailPromptFormat, normalize.MarshalWithDates(comparison), decision)

	temp := 0.3
	resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Anthropic.Model,
		MaxTokens:   500,
		Temperature: &temp,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "email")

	return extractText(resp), nil
}
