package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTrueVerdict() map[string]any {
	return map[string]any{
		"name":             map[string]any{"claim_table": true},
		"license_no":       map[string]any{"claim_table": true, "dl_table": true},
		"address":          map[string]any{"claim_table": true, "dl_table": true},
		"car_make":         map[string]any{"claim_car": true},
		"car_model":        map[string]any{"claim_car": true},
		"car_color":        map[string]any{"claim_car": true},
		"damage_details":   map[string]any{"claim_car": true},
		"license_validity": true,
	}
}

func TestNormalizeComparison_Empty(t *testing.T) {
	for _, input := range []map[string]any{nil, {}} {
		c := NormalizeComparison(input)
		require.NotNil(t, c)

		// Every field present, everything false.
		assert.Equal(t, FieldMatch{"claim_table": false}, c.Name)
		assert.Equal(t, FieldMatch{"claim_table": false, "dl_table": false}, c.LicenseNo)
		assert.Equal(t, FieldMatch{"claim_table": false, "dl_table": false}, c.Address)
		assert.Equal(t, FieldMatch{"claim_car": false}, c.CarMake)
		assert.Equal(t, FieldMatch{"claim_car": false}, c.CarModel)
		assert.Equal(t, FieldMatch{"claim_car": false}, c.CarColor)
		assert.Equal(t, FieldMatch{"claim_car": false}, c.DamageDetails)
		assert.False(t, c.LicenseValidity)
		assert.Equal(t, DecisionRejected, c.Decide())
	}
}

func TestNormalizeComparison_PartialAndMalformed(t *testing.T) {
	c := NormalizeComparison(map[string]any{
		"name":             map[string]any{"claim_table": true, "extra": true},
		"license_no":       "yes",
		"car_make":         map[string]any{"claim_car": "true"},
		"license_validity": map[string]any{"value": true},
		"unknown_field":    true,
	})

	assert.True(t, c.Name["claim_table"])
	assert.False(t, c.LicenseNo["claim_table"])
	assert.False(t, c.LicenseNo["dl_table"])
	assert.False(t, c.CarMake["claim_car"])
	assert.True(t, c.LicenseValidity)

	// Unknown keys are dropped, not carried.
	assert.NotContains(t, c.Name, "extra")
}

func TestComparison_Accepted(t *testing.T) {
	c := NormalizeComparison(allTrueVerdict())
	assert.True(t, c.Accepted())
	assert.Equal(t, DecisionAccepted, c.Decide())
}

func TestComparison_AnyFailureRejects(t *testing.T) {
	flips := []func(map[string]any){
		func(v map[string]any) { v["name"].(map[string]any)["claim_table"] = false },
		func(v map[string]any) { v["license_no"].(map[string]any)["claim_table"] = false },
		func(v map[string]any) { v["license_no"].(map[string]any)["dl_table"] = false },
		func(v map[string]any) { v["address"].(map[string]any)["claim_table"] = false },
		func(v map[string]any) { v["address"].(map[string]any)["dl_table"] = false },
		func(v map[string]any) { v["car_make"].(map[string]any)["claim_car"] = false },
		func(v map[string]any) { v["car_model"].(map[string]any)["claim_car"] = false },
		func(v map[string]any) { v["car_color"].(map[string]any)["claim_car"] = false },
		func(v map[string]any) { v["damage_details"].(map[string]any)["claim_car"] = false },
		func(v map[string]any) { v["license_validity"] = false },
		func(v map[string]any) { delete(v, "damage_details") },
	}

	for i, flip := range flips {
		verdict := allTrueVerdict()
		flip(verdict)
		c := NormalizeComparison(verdict)
		assert.Equal(t, DecisionRejected, c.Decide(), "flip %d", i)
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy(true))
	assert.False(t, truthy(false))
	assert.True(t, truthy(map[string]any{"value": true}))
	assert.False(t, truthy(map[string]any{"value": "true"}))
	assert.False(t, truthy("true"))
	assert.False(t, truthy(nil))
}
