package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnalyzerForm() AnalyzerForm {
	return AnalyzerForm{
		MonthlyRevenue:             "500000",
		CustomerRetentionRate:      "75",
		CustomerAcquisitionCost:    "2000",
		WorkingCapitalCycleDays:    "45",
		InventoryTurnoverRatio:     "6",
		OperationalEfficiencyRatio: "68",
		EmployeeProductivity:       "80000",
		BusinessBriefing:           "D2C apparel brand selling across three metros",
		TargetedQuestion:           "How do I cut CAC without losing growth?",
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	return errs
}

// ==========================
// DemoForm
// ==========================

func TestDemoForm_Validate(t *testing.T) {
	tests := []struct {
		name   string
		form   DemoForm
		fields []string
	}{
		{"valid without email", DemoForm{Name: "Asha", Phone: "9876543210", Type: "lead"}, nil},
		{"valid with email", DemoForm{Name: "Asha", Phone: "9876543210", Email: "a@b.co", Type: "appointment"}, nil},
		{"short name", DemoForm{Name: " A ", Phone: "1", Type: "lead"}, []string{"name"}},
		{"blank phone", DemoForm{Name: "Asha", Phone: "   ", Type: "lead"}, []string{"phone"}},
		{"bad email", DemoForm{Name: "Asha", Phone: "1", Email: "asha@", Type: "lead"}, []string{"email"}},
		{"strict email missing", DemoForm{Name: "Asha", Phone: "1", Type: "lead", StrictEmail: true}, []string{"email"}},
		{"unknown type", DemoForm{Name: "Asha", Phone: "1", Type: "support"}, []string{"demoType"}},
		{"everything wrong", DemoForm{Type: "lead", StrictEmail: true}, []string{"name", "phone", "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			errs := fieldErrors(t, err)
			assert.Len(t, errs, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
			}
		})
	}
}

func TestDemoForm_Endpoint(t *testing.T) {
	assert.Equal(t, "/api/demo/lead", DemoForm{Type: "lead"}.Endpoint())
	assert.Equal(t, "/api/demo/appointment", DemoForm{Type: "appointment"}.Endpoint())
}

// ==========================
// AnalyzerForm
// ==========================

func TestAnalyzerForm_Valid(t *testing.T) {
	payload, err := validAnalyzerForm().ToPayload()
	require.NoError(t, err)
	assert.Equal(t, 500000.0, payload.MonthlyRevenue)
	assert.Equal(t, 75.0, payload.CustomerRetentionRate)
	assert.Equal(t, 6.0, payload.InventoryTurnoverRatio)
	assert.Equal(t, "How do I cut CAC without losing growth?", payload.TargetedQuestion)
}

func TestAnalyzerForm_RetentionAboveHundredRejected(t *testing.T) {
	form := validAnalyzerForm()
	form.CustomerRetentionRate = "150"

	errs := fieldErrors(t, form.Validate())
	assert.Equal(t, "Enter a percentage between 0 and 100.", errs["Customer_Retention_Rate"])

	_, err := form.ToPayload()
	assert.Error(t, err)
}

func TestAnalyzerForm_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AnalyzerForm)
		field   string
		message string
	}{
		{"revenue missing", func(f *AnalyzerForm) { f.MonthlyRevenue = "" },
			"Monthly_Revenue", "Monthly revenue is required."},
		{"revenue negative", func(f *AnalyzerForm) { f.MonthlyRevenue = "-1" },
			"Monthly_Revenue", "Enter a valid non-negative number."},
		{"revenue not numeric", func(f *AnalyzerForm) { f.MonthlyRevenue = "five lakh" },
			"Monthly_Revenue", "Enter a valid non-negative number."},
		{"inventory zero", func(f *AnalyzerForm) { f.InventoryTurnoverRatio = "0" },
			"Inventory_Turnover_Ratio", "Enter a positive number."},
		{"efficiency above hundred", func(f *AnalyzerForm) { f.OperationalEfficiencyRatio = "101" },
			"Operational_Efficiency_Ratio", "Enter a percentage between 0 and 100."},
		{"days not finite", func(f *AnalyzerForm) { f.WorkingCapitalCycleDays = "Inf" },
			"Working_Capital_Cycle_Days", "Enter a valid number of days."},
		{"short briefing", func(f *AnalyzerForm) { f.BusinessBriefing = "Small shop" },
			"business_briefing", "Please provide more details (min 20 characters) or leave empty."},
		{"short question", func(f *AnalyzerForm) { f.TargetedQuestion = "Grow?" },
			"targeted_question", "Please describe your main question (min 10 characters)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validAnalyzerForm()
			tt.mutate(&form)
			errs := fieldErrors(t, form.Validate())
			assert.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[tt.field])
		})
	}
}

func TestAnalyzerForm_ZeroValuesAccepted(t *testing.T) {
	form := validAnalyzerForm()
	form.CustomerRetentionRate = "0"
	form.CustomerAcquisitionCost = "0"
	form.BusinessBriefing = ""
	assert.NoError(t, form.Validate())
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{"phone": "required", "name": "too short"}
	assert.Equal(t, "invalid form: name: too short; phone: required", err.Error())
}
