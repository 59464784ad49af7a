package businessanalyzer

import (
	"math"
	"strconv"
	"strings"

	"growify-relay/internal/models"
)

// DerivedMetrics are computed for prompt context only. A nil pointer means
// the ratio is undefined for the given inputs (division by zero).
type DerivedMetrics struct {
	AnnualRevenue      float64
	LifetimeValue      float64
	LTVToCAC           *float64
	InventoryDays      *float64
	RevenuePerEmployee *float64
	CACShareOfLTV      *float64
	CACReduction       float64
	CashFlowPosition   string
}

// Derive computes the display metrics. LTV:CAC keeps the rough estimate the
// site has always shown: annual revenue over CAC x 100.
func Derive(m *models.BusinessMetrics) DerivedMetrics {
	d := DerivedMetrics{
		AnnualRevenue:    m.MonthlyRevenue * 12,
		LifetimeValue:    m.MonthlyRevenue * m.CustomerRetentionRate / 100,
		CACReduction:     m.CustomerAcquisitionCost * 0.15,
		CashFlowPosition: CashFlowPosition(m.WorkingCapitalCycleDays),
	}

	d.LTVToCAC = ratio(d.AnnualRevenue, m.CustomerAcquisitionCost*100)
	d.InventoryDays = ratio(365, m.InventoryTurnoverRatio)
	d.RevenuePerEmployee = ratio(m.MonthlyRevenue, m.EmployeeProductivity)
	if share := ratio(m.CustomerAcquisitionCost, d.LifetimeValue/100); share != nil {
		v := *share * 100
		d.CACShareOfLTV = &v
	}
	return d
}

// CashFlowPosition bands the working-capital cycle.
func CashFlowPosition(days float64) string {
	switch {
	case days < 30:
		return "Strong - Good liquidity position"
	case days < 60:
		return "Moderate - Monitor closely"
	default:
		return "Challenging - Tight cash position"
	}
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatINR renders v with Indian digit grouping (12,34,567.5) and at most
// three fraction digits.
func FormatINR(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}

	rounded := roundHalfAway(v, 3)
	s := strconv.FormatFloat(math.Abs(rounded), 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	out := groupIndian(intPart)
	if hasFrac {
		out += "." + frac
	}
	if rounded < 0 {
		out = "-" + out
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// FormatNumber renders v the shortest way, as the form submitted it.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fixed formats v with exactly digits decimals, rounding halves away from
// zero. Undefined values render as N/A.
func Fixed(v *float64, digits int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(roundHalfAway(*v, digits), 'f', digits, 64)
}

func roundHalfAway(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
