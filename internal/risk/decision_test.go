package risk

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_Categories(t *testing.T) {
	th := DefaultThresholds()

	testCases := []struct {
		name     string
		repay    float64
		expected Category
	}{
		{"certain repay", 1.0, LowToModerate},
		{"above low bound", 0.85, LowToModerate},
		{"exactly low bound", 0.7, LowToModerate},
		{"just below low bound", 0.6999, ModerateToHigh},
		{"exactly moderate bound", 0.5, ModerateToHigh},
		{"just below moderate bound", 0.4999, High},
		{"certain default", 0, High},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Decide(tc.repay, 1000, th)
			assert.Equal(t, tc.expected, v.Category)
			assert.Equal(t, tc.expected.Recommendation(), v.Recommendation)
		})
	}
}

func TestDecide_SuggestedLimit(t *testing.T) {
	th := DefaultThresholds()

	v := Decide(0.8, 5000, th)
	assert.True(t, v.SuggestedLimit.Equal(decimal.NewFromInt(4000)), "got %s", v.SuggestedLimit)
	assert.Equal(t, LowToModerate, v.Category)
	assert.Equal(t, "Approve (with suggested limit)", v.Recommendation)

	v = Decide(0.4, 5000, th)
	assert.True(t, v.SuggestedLimit.Equal(decimal.NewFromInt(2000)), "got %s", v.SuggestedLimit)
	assert.Equal(t, High, v.Category)
	assert.Equal(t, "Decline or very careful analysis", v.Recommendation)

	v = Decide(0.6, 1234.56, th)
	assert.Equal(t, "740.74", v.SuggestedLimit.StringFixed(2))
	assert.Equal(t, "Further analysis / approve with caution", v.Recommendation)
}

func TestDecide_IsTotal(t *testing.T) {
	th := DefaultThresholds()

	testCases := []struct {
		name      string
		repay     float64
		requested float64
		wantRepay float64
		wantLimit string
	}{
		{"nan probability", math.NaN(), 1000, 0, "0"},
		{"negative probability", -0.3, 1000, 0, "0"},
		{"probability above one", 1.4, 1000, 1, "1000"},
		{"nan amount", 0.9, math.NaN(), 0.9, "0"},
		{"infinite amount", 0.9, math.Inf(1), 0.9, "0"},
		{"negative amount", 0.9, -50, 0.9, "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var v Verdict
			require.NotPanics(t, func() { v = Decide(tc.repay, tc.requested, th) })
			assert.Equal(t, tc.wantRepay, v.MeanRepay)
			assert.True(t, v.SuggestedLimit.Equal(decimal.RequireFromString(tc.wantLimit)), "got %s", v.SuggestedLimit)
		})
	}
}

func TestNewThresholdsFromPercent(t *testing.T) {
	th, err := NewThresholdsFromPercent(80, 40)
	require.NoError(t, err)
	assert.Equal(t, 0.8, th.LowModerate)
	assert.Equal(t, 0.4, th.ModerateHigh)

	low, mod := th.Percent()
	assert.InDelta(t, 80, low, 1e-9)
	assert.InDelta(t, 40, mod, 1e-9)

	// equal thresholds collapse the middle band
	th, err = NewThresholdsFromPercent(60, 60)
	require.NoError(t, err)
	assert.Equal(t, LowToModerate, Decide(0.6, 1, th).Category)
	assert.Equal(t, High, Decide(0.59, 1, th).Category)

	for _, bad := range [][2]float64{{101, 50}, {70, -1}, {40, 60}, {math.NaN(), 50}} {
		_, err := NewThresholdsFromPercent(bad[0], bad[1])
		assert.Error(t, err, "thresholds %v", bad)
	}
}

func TestCategory_Text(t *testing.T) {
	assert.Equal(t, "Low to Moderate Risk", LowToModerate.String())
	assert.Equal(t, "Moderate to High Risk", ModerateToHigh.String())
	assert.Equal(t, "High Risk", High.String())

	b, err := ModerateToHigh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "moderate_to_high", string(b))
}
