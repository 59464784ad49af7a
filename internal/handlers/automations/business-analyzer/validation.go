package businessanalyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/validation"
	"growify-relay/internal/models"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func metric(desc string) validation.Property {
	return validation.Property{Type: "number", Description: desc}
}

// GetInputSchema returns the request schema. Without bounds only types are
// checked; with bounds the analyzer form's ranges apply as well.
func GetInputSchema(withBounds bool) validation.JSONSchema {
	props := map[string]validation.Property{
		"Monthly_Revenue":              metric("Monthly revenue in rupees"),
		"Customer_Retention_Rate":      metric("Retention rate, percent"),
		"Customer_Acquisition_Cost":    metric("Acquisition cost per customer in rupees"),
		"Working_Capital_Cycle_Days":   metric("Working capital cycle in days"),
		"Inventory_Turnover_Ratio":     metric("Inventory turns per year"),
		"Operational_Efficiency_Ratio": metric("Operational efficiency, percent"),
		"Employee_Productivity":        metric("Revenue per employee per month in rupees"),
		"business_briefing": {
			Type:        "string",
			Description: "Free-text business context",
			MaxLength:   intPtr(5000),
		},
		"targeted_question": {
			Type:        "string",
			Description: "The question the report must answer",
			MaxLength:   intPtr(2000),
		},
	}

	if withBounds {
		for _, f := range []string{"Monthly_Revenue", "Customer_Acquisition_Cost", "Working_Capital_Cycle_Days", "Employee_Productivity", "Inventory_Turnover_Ratio"} {
			p := props[f]
			p.Minimum = floatPtr(0)
			props[f] = p
		}
		for _, f := range []string{"Customer_Retention_Rate", "Operational_Efficiency_Ratio"} {
			p := props[f]
			p.Minimum = floatPtr(0)
			p.Maximum = floatPtr(100)
			props[f] = p
		}
		q := props["targeted_question"]
		q.MinLength = intPtr(10)
		props["targeted_question"] = q
	}

	return validation.JSONSchema{
		Type:                 "object",
		Required:             append(append([]string{}, models.MetricFields...), "targeted_question"),
		Properties:           props,
		AdditionalProperties: true,
	}
}

// parseInput decodes and validates the request body. Absent, null or empty
// required fields give the 400 "Missing required fields".
func parseInput(body []byte, withBounds bool) (*models.BusinessMetrics, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperrors.NewInternalError(processFailedMessage, err)
	}
	if fields == nil {
		return nil, apperrors.NewInternalError(processFailedMessage, fmt.Errorf("body is not a JSON object"))
	}

	required := append(append([]string{}, models.MetricFields...), "targeted_question")
	if missing := validation.MissingFields(fields, required...); len(missing) > 0 {
		return nil, apperrors.NewValidationError(missingFieldsMessage, strings.Join(missing, ", "))
	}

	result := validation.ValidateInput(fields, GetInputSchema(withBounds))
	if !result.Valid {
		return nil, apperrors.NewValidationError("Input validation failed", strings.Join(result.GetErrorMessages(), "; "))
	}

	var input models.BusinessMetrics
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, apperrors.NewInternalError(processFailedMessage, err)
	}

	if withBounds {
		if input.InventoryTurnoverRatio <= 0 {
			return nil, apperrors.NewValidationError("Input validation failed", "Inventory_Turnover_Ratio: value must be greater than 0")
		}
		if b := strings.TrimSpace(input.BusinessBriefing); b != "" && len([]rune(b)) < 20 {
			return nil, apperrors.NewValidationError("Input validation failed", "business_briefing: value must be at least 20 characters")
		}
	}
	return &input, nil
}
