// Package risk maps the mean repayment probability of the soft vote onto a
// risk category, a recommendation and a suggested credit limit.
package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"credit-risk/internal/common"
)

// Category is the coarse risk band of an applicant.
type Category int

const (
	LowToModerate Category = iota
	ModerateToHigh
	High
)

func (c Category) String() string {
	switch c {
	case LowToModerate:
		return "Low to Moderate Risk"
	case ModerateToHigh:
		return "Moderate to High Risk"
	case High:
		return "High Risk"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Key is the stable identifier used in metrics labels and JSON.
func (c Category) Key() string {
	switch c {
	case LowToModerate:
		return "low_to_moderate"
	case ModerateToHigh:
		return "moderate_to_high"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Recommendation is the action shown to the analyst for the category.
func (c Category) Recommendation() string {
	switch c {
	case LowToModerate:
		return "Approve (with suggested limit)"
	case ModerateToHigh:
		return "Further analysis / approve with caution"
	default:
		return "Decline or very careful analysis"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.Key()), nil
}

// Thresholds are the lower bounds, as probabilities, of the two upper bands.
type Thresholds struct {
	LowModerate  float64
	ModerateHigh float64
}

// DefaultThresholds returns 0.70 / 0.50.
func DefaultThresholds() Thresholds {
	t, _ := NewThresholdsFromPercent(common.DefaultRiskThresholdLowModerate, common.DefaultRiskThresholdModerateHigh)
	return t
}

// NewThresholdsFromPercent converts percentage thresholds such as 70 and 50
// into probabilities.
func NewThresholdsFromPercent(lowModerate, moderateHigh float64) (Thresholds, error) {
	for _, v := range []float64{lowModerate, moderateHigh} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return Thresholds{}, fmt.Errorf("risk threshold %v must be within [0, 100]", v)
		}
	}
	if lowModerate < moderateHigh {
		return Thresholds{}, fmt.Errorf("low/moderate threshold %v is below moderate/high threshold %v", lowModerate, moderateHigh)
	}
	return Thresholds{LowModerate: lowModerate / 100, ModerateHigh: moderateHigh / 100}, nil
}

// Percent returns the thresholds as percentages.
func (t Thresholds) Percent() (lowModerate, moderateHigh float64) {
	return t.LowModerate * 100, t.ModerateHigh * 100
}

// Verdict is the final decision for one applicant.
type Verdict struct {
	Category       Category        `json:"category"`
	MeanRepay      float64         `json:"mean_repay"`
	Requested      decimal.Decimal `json:"requested"`
	SuggestedLimit decimal.Decimal `json:"suggested_limit"`
	Recommendation string          `json:"recommendation"`
}

// Decide classifies meanRepay against t and derives the suggested limit as
// requested * meanRepay, rounded to cents. Both bounds are inclusive. Decide
// never fails: a NaN probability counts as 0 and values outside [0,1] are
// clamped, a negative or non-finite amount counts as 0.
func Decide(meanRepay, requested float64, t Thresholds) Verdict {
	p := clampProbability(meanRepay)

	var category Category
	switch {
	case p >= t.LowModerate:
		category = LowToModerate
	case p >= t.ModerateHigh:
		category = ModerateToHigh
	default:
		category = High
	}

	amount := decimal.Zero
	if !math.IsNaN(requested) && !math.IsInf(requested, 0) && requested > 0 {
		amount = decimal.NewFromFloat(requested)
	}

	return Verdict{
		Category:       category,
		MeanRepay:      p,
		Requested:      amount,
		SuggestedLimit: amount.Mul(decimal.NewFromFloat(p)).Round(2),
		Recommendation: category.Recommendation(),
	}
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
