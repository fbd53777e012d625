package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartEnvelope_DecodesPopulatedAndBareReferences(t *testing.T) {
	payload := `{
		"success": true,
		"isGuest": false,
		"cart": {
			"total": "1040",
			"orderNote": "ring the bell",
			"items": [
				{
					"_id": "line-1",
					"menuItem": {"_id": "biryani", "name": "Chicken Biryani", "price": 450, "image": "biryani.jpg"},
					"quantity": 2,
					"priceAtAdd": 450,
					"sides": ["Raita", {"name": "Salad", "price": "40"}],
					"addedAt": "2026-10-16T10:00:00Z"
				},
				{
					"id": "line-2",
					"menuItem": "naan",
					"quantity": 1,
					"priceAtAdd": 100
				}
			]
		}
	}`

	var env CartEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))
	require.NotNil(t, env.Cart)

	assert.True(t, env.Success)
	assert.Equal(t, 1040.0, env.Cart.Total.Float64())
	assert.Equal(t, "ring the bell", env.Cart.OrderNote)
	require.Len(t, env.Cart.Items, 2)

	first := env.Cart.Items[0]
	assert.Equal(t, "line-1", first.LineID())
	assert.Equal(t, "biryani", first.MenuItem.ID)
	assert.Equal(t, "Chicken Biryani", first.MenuItem.Name)
	assert.Equal(t, 450.0, first.MenuItem.Price.Float64())
	require.Len(t, first.Sides, 2)
	assert.Equal(t, "Raita", first.Sides[0].Name)
	assert.Equal(t, 0.0, first.Sides[0].Price.Float64())
	assert.Equal(t, 40.0, first.Sides[1].Price.Float64())

	second := env.Cart.Items[1]
	assert.Equal(t, "line-2", second.LineID())
	assert.Equal(t, "naan", second.MenuItem.ID)
}

func TestFlexFloat_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"number", `3.2`, 3.2, false},
		{"numeric string", `"3.2"`, 3.2, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"garbage", `"far"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Float64())
		})
	}
}

func TestDeliveryCalculateResponse_Eligible(t *testing.T) {
	var eligible DeliveryCalculateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"inService":true,"deliverable":true,"distanceKm":"3.2","deliveryFee":99}`), &eligible))
	assert.True(t, eligible.Eligible())
	assert.Equal(t, 3.2, eligible.DistanceKm.Float64())

	var rejected DeliveryCalculateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"message":"Outside service area"}`), &rejected))
	assert.False(t, rejected.Eligible())
	assert.Equal(t, "Outside service area", rejected.Message)
}
