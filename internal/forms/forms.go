// Package forms holds the site's form rules and a client that submits them
// the way the browser does: validate first, then post.
package forms

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"growify-relay/internal/models"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a field name to its user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Form is anything the Submitter can send.
type Form interface {
	Validate() error
	Endpoint() string
	Payload() (interface{}, error)
}

// ==========================
// Demo request form
// ==========================

type DemoForm struct {
	Name  string
	Phone string
	Email string
	// Type is "lead" or "appointment".
	Type string
	// StrictEmail makes email required, as on the standalone demo page.
	StrictEmail bool
}

func (f DemoForm) Validate() error {
	errs := FieldErrors{}
	if name := strings.TrimSpace(f.Name); utf8.RuneCountInString(name) < 2 {
		errs["name"] = "Name is required (min 2 characters)"
	}
	if strings.TrimSpace(f.Phone) == "" {
		errs["phone"] = "Phone number is required"
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "" && f.StrictEmail:
		errs["email"] = "Email is required"
	case email != "" && !emailPattern.MatchString(f.Email):
		errs["email"] = "Invalid email format"
	}

	if f.Type != "lead" && f.Type != "appointment" {
		errs["demoType"] = "Demo type must be lead or appointment"
	}
	return errs.orNil()
}

func (f DemoForm) Endpoint() string {
	return "/api/demo/" + f.Type
}

func (f DemoForm) Payload() (interface{}, error) {
	return &models.DemoRequest{
		Name:     f.Name,
		Phone:    f.Phone,
		Email:    f.Email,
		DemoType: f.Type,
	}, nil
}

// ==========================
// Business analyzer form
// ==========================

// AnalyzerForm keeps every field as the text the user typed.
type AnalyzerForm struct {
	MonthlyRevenue             string
	CustomerRetentionRate      string
	CustomerAcquisitionCost    string
	WorkingCapitalCycleDays    string
	InventoryTurnoverRatio     string
	OperationalEfficiencyRatio string
	EmployeeProductivity       string
	BusinessBriefing           string
	TargetedQuestion           string
}

type numberRule struct {
	field    string
	value    func(AnalyzerForm) string
	required string
	invalid  string
	ok       func(float64) bool
}

var (
	nonNegative = func(v float64) bool { return v >= 0 }
	positive    = func(v float64) bool { return v > 0 }
	percentage  = func(v float64) bool { return v >= 0 && v <= 100 }
)

var analyzerRules = []numberRule{
	{"Monthly_Revenue", func(f AnalyzerForm) string { return f.MonthlyRevenue },
		"Monthly revenue is required.", "Enter a valid non-negative number.", nonNegative},
	{"Customer_Retention_Rate", func(f AnalyzerForm) string { return f.CustomerRetentionRate },
		"Retention rate is required.", "Enter a percentage between 0 and 100.", percentage},
	{"Customer_Acquisition_Cost", func(f AnalyzerForm) string { return f.CustomerAcquisitionCost },
		"CAC is required.", "Enter a valid non-negative number.", nonNegative},
	{"Working_Capital_Cycle_Days", func(f AnalyzerForm) string { return f.WorkingCapitalCycleDays },
		"Working capital cycle is required.", "Enter a valid number of days.", nonNegative},
	{"Inventory_Turnover_Ratio", func(f AnalyzerForm) string { return f.InventoryTurnoverRatio },
		"Inventory turnover is required.", "Enter a positive number.", positive},
	{"Operational_Efficiency_Ratio", func(f AnalyzerForm) string { return f.OperationalEfficiencyRatio },
		"Operational efficiency is required.", "Enter a percentage between 0 and 100.", percentage},
	{"Employee_Productivity", func(f AnalyzerForm) string { return f.EmployeeProductivity },
		"Employee productivity is required.", "Enter a valid non-negative number.", nonNegative},
}

func (f AnalyzerForm) Validate() error {
	errs := FieldErrors{}
	for _, rule := range analyzerRules {
		raw := strings.TrimSpace(rule.value(f))
		if raw == "" {
			errs[rule.field] = rule.required
			continue
		}
		v, err := parseNumber(raw)
		if err != nil || !rule.ok(v) {
			errs[rule.field] = rule.invalid
		}
	}

	if briefing := strings.TrimSpace(f.BusinessBriefing); f.BusinessBriefing != "" && utf8.RuneCountInString(briefing) < 20 {
		errs["business_briefing"] = "Please provide more details (min 20 characters) or leave empty."
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.TargetedQuestion)) < 10 {
		errs["targeted_question"] = "Please describe your main question (min 10 characters)."
	}
	return errs.orNil()
}

func (f AnalyzerForm) Endpoint() string {
	return "/api/automations/business-analyzer"
}

func (f AnalyzerForm) Payload() (interface{}, error) {
	return f.ToPayload()
}

// ToPayload converts a validated form to the request body.
func (f AnalyzerForm) ToPayload() (*models.BusinessMetrics, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	values := make([]float64, len(analyzerRules))
	for i, rule := range analyzerRules {
		v, err := parseNumber(strings.TrimSpace(rule.value(f)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.field, err)
		}
		values[i] = v
	}

	return &models.BusinessMetrics{
		MonthlyRevenue:             values[0],
		CustomerRetentionRate:      values[1],
		CustomerAcquisitionCost:    values[2],
		WorkingCapitalCycleDays:    values[3],
		InventoryTurnoverRatio:     values[4],
		OperationalEfficiencyRatio: values[5],
		EmployeeProductivity:       values[6],
		BusinessBriefing:           strings.TrimSpace(f.BusinessBriefing),
		TargetedQuestion:           strings.TrimSpace(f.TargetedQuestion),
	}, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
