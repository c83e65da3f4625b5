// Package report turns an assessment into display-ready values for the CLI,
// the HTML page, the JSON API and the websocket feed.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"credit-risk/internal/assess"
	"credit-risk/internal/ml"
)

// ErrorMarker replaces the probabilities of a model that failed.
const ErrorMarker = "Error"

var printer = message.NewPrinter(language.English)

// ModelRow is one line of the per-model table.
type ModelRow struct {
	Model   string `json:"model"`
	Repay   string `json:"repay"`
	Default string `json:"default"`
	Failed  bool   `json:"failed"`
	Reason  string `json:"reason,omitempty"`
}

// View is the formatted summary of one assessment.
type View struct {
	ID             string     `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	Income         string     `json:"income"`
	Age            int        `json:"age"`
	LoanAmount     string     `json:"loan_amount"`
	MeanRepay      string     `json:"mean_repay"`
	MeanRepayValue float64    `json:"mean_repay_value"`
	SuggestedLimit string     `json:"suggested_limit"`
	Category       string     `json:"category"`
	CategoryKey    string     `json:"category_key"`
	Recommendation string     `json:"recommendation"`
	ModelsUsed     int        `json:"models_used"`
	Models         []ModelRow `json:"models"`
}

// NewView formats a. currency prefixes every money amount.
func NewView(a *assess.Assessment, currency string) View {
	v := View{
		ID:             a.ID,
		Timestamp:      a.Timestamp,
		Income:         Money(currency, a.Input.Income),
		Age:            a.Input.Age,
		LoanAmount:     Money(currency, a.Input.LoanAmount),
		MeanRepay:      Percent(a.Verdict.MeanRepay),
		MeanRepayValue: a.Verdict.MeanRepay,
		SuggestedLimit: MoneyDecimal(currency, a.Verdict.SuggestedLimit),
		Category:       a.Verdict.Category.String(),
		CategoryKey:    a.Verdict.Category.Key(),
		Recommendation: a.Verdict.Recommendation,
	}

	if a.Prediction == nil {
		return v
	}
	v.ModelsUsed = a.Prediction.Used
	for _, o := range a.Prediction.Outcomes {
		switch o := o.(type) {
		case ml.Success:
			v.Models = append(v.Models, ModelRow{
				Model:   o.Model,
				Repay:   Percent(o.Repay),
				Default: Percent(o.Default),
			})
		case ml.Failure:
			row := ModelRow{Model: o.Model, Repay: ErrorMarker, Default: ErrorMarker, Failed: true}
			if o.Err != nil {
				row.Reason = o.Err.Error()
			}
			v.Models = append(v.Models, row)
		}
	}
	return v
}

// Percent formats a probability with one decimal, e.g. 0.8 -> "80.0%".
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// Money formats an amount with thousands separators and two decimals.
func Money(currency string, amount float64) string {
	return MoneyDecimal(currency, decimal.NewFromFloat(amount))
}

// MoneyDecimal is Money for exact amounts. Digits come from the decimal value
// rounded half away from zero to cents; only the grouping is locale-driven.
func MoneyDecimal(currency string, amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	// amounts past int64 are printed ungrouped
	if len(whole) <= 18 {
		whole = printer.Sprintf("%d", amount.Abs().Round(2).Truncate(0).IntPart())
	}

	s := whole + "." + cents
	if amount.Round(2).IsNegative() {
		s = "-" + s
	}
	if currency == "" {
		return s
	}
	return currency + " " + s
}

// WriteSummary writes the plain-text summary printed by the CLI.
func WriteSummary(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "CREDIT RISK ASSESSMENT\n")
	fmt.Fprintf(&b, "======================\n\n")
	fmt.Fprintf(&b, "Assessment: %s\n", v.ID)
	fmt.Fprintf(&b, "Time: %s\n\n", v.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "APPLICANT\n")
	fmt.Fprintf(&b, "---------\n")
	fmt.Fprintf(&b, "Annual Income: %s\n", v.Income)
	fmt.Fprintf(&b, "Age: %d\n", v.Age)
	fmt.Fprintf(&b, "Requested Loan: %s\n\n", v.LoanAmount)

	fmt.Fprintf(&b, "RESULT\n")
	fmt.Fprintf(&b, "------\n")
	fmt.Fprintf(&b, "Average Repayment Probability: %s\n", v.MeanRepay)
	fmt.Fprintf(&b, "Suggested Credit Limit: %s\n", v.SuggestedLimit)
	fmt.Fprintf(&b, "Risk: %s\n", v.Category)
	fmt.Fprintf(&b, "Recommendation: %s\n\n", v.Recommendation)

	fmt.Fprintf(&b, "MODELS (%d of %d used)\n", v.ModelsUsed, len(v.Models))
	fmt.Fprintf(&b, "%-24s %10s %10s\n", "Model", "Repay", "Default")
	for _, row := range v.Models {
		fmt.Fprintf(&b, "%-24s %10s %10s\n", row.Model, row.Repay, row.Default)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
