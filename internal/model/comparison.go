package model

// Decision is the binary outcome of a claim review.
type Decision string

const (
	DecisionAccepted Decision = "Claim Accepted"
	DecisionRejected Decision = "Claim Rejected"
)

// FieldMatch maps a comparison source pair (e.g. "claim_table") to whether
// the field matched across that pair.
type FieldMatch map[string]bool

// Comparison is the fixed-shape verdict produced by the reconciliation
// stage. After NormalizeComparison every field and subfield is present;
// anything the model omitted or mistyped defaults to false.
type Comparison struct {
	Name            FieldMatch `json:"name"`
	LicenseNo       FieldMatch `json:"license_no"`
	Address         FieldMatch `json:"address"`
	CarMake         FieldMatch `json:"car_make"`
	CarModel        FieldMatch `json:"car_model"`
	CarColor        FieldMatch `json:"car_color"`
	DamageDetails   FieldMatch `json:"damage_details"`
	LicenseValidity bool       `json:"license_validity"`
}

// comparisonSchema lists every verdict field and its expected subkeys.
// license_validity is the lone bare boolean.
var comparisonSchema = []struct {
	field   string
	subkeys []string
}{
	{"name", []string{"claim_table"}},
	{"license_no", []string{"claim_table", "dl_table"}},
	{"address", []string{"claim_table", "dl_table"}},
	{"car_make", []string{"claim_car"}},
	{"car_model", []string{"claim_car"}},
	{"car_color", []string{"claim_car"}},
	{"damage_details", []string{"claim_car"}},
	{"license_validity", nil},
}

// NormalizeComparison coerces arbitrary model output into the fixed verdict
// schema. Missing or malformed fields default to false; it never fails.
func NormalizeComparison(data map[string]any) *Comparison {
	c := &Comparison{
		Name:          FieldMatch{},
		LicenseNo:     FieldMatch{},
		Address:       FieldMatch{},
		CarMake:       FieldMatch{},
		CarModel:      FieldMatch{},
		CarColor:      FieldMatch{},
		DamageDetails: FieldMatch{},
	}

	for _, entry := range comparisonSchema {
		if entry.field == "license_validity" {
			c.LicenseValidity = truthy(valueOf(data, entry.field))
			continue
		}
		fm := c.fieldMatch(entry.field)
		sub, _ := valueOf(data, entry.field).(map[string]any)
		for _, key := range entry.subkeys {
			b, _ := sub[key].(bool)
			fm[key] = b
		}
	}
	return c
}

// Accepted applies the strict conjunctive decision rule: every required
// subfield must be true and the license must be valid. No partial credit.
func (c *Comparison) Accepted() bool {
	for _, entry := range comparisonSchema {
		if entry.field == "license_validity" {
			if !c.LicenseValidity {
				return false
			}
			continue
		}
		fm := c.fieldMatch(entry.field)
		for _, key := range entry.subkeys {
			if !fm[key] {
				return false
			}
		}
	}
	return true
}

// Decide maps the verdict to its binary outcome.
func (c *Comparison) Decide() Decision {
	if c.Accepted() {
		return DecisionAccepted
	}
	return DecisionRejected
}

func (c *Comparison) fieldMatch(field string) FieldMatch {
	switch field {
	case "name":
		return c.Name
	case "license_no":
		return c.LicenseNo
	case "address":
		return c.Address
	case "car_make":
		return c.CarMake
	case "car_model":
		return c.CarModel
	case "car_color":
		return c.CarColor
	case "damage_details":
		return c.DamageDetails
	}
	return FieldMatch{}
}

func valueOf(data map[string]any, key string) any {
	if data == nil {
		return nil
	}
	return data[key]
}

// truthy interprets the model's license_validity output leniently: a bare
// boolean, or a mapping with a "value" key, counts; anything else is false.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case map[string]any:
		b, _ := t["value"].(bool)
		return b
	default:
		return false
	}
}
