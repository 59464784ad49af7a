package models

// BusinessMetrics is the business analyzer request body. Field names match
// the automation payload the site already sends.
type BusinessMetrics struct {
	MonthlyRevenue             float64 `json:"Monthly_Revenue"`
	CustomerRetentionRate      float64 `json:"Customer_Retention_Rate"`
	CustomerAcquisitionCost    float64 `json:"Customer_Acquisition_Cost"`
	WorkingCapitalCycleDays    float64 `json:"Working_Capital_Cycle_Days"`
	InventoryTurnoverRatio     float64 `json:"Inventory_Turnover_Ratio"`
	OperationalEfficiencyRatio float64 `json:"Operational_Efficiency_Ratio"`
	EmployeeProductivity       float64 `json:"Employee_Productivity"`
	BusinessBriefing           string  `json:"business_briefing"`
	TargetedQuestion           string  `json:"targeted_question"`
}

// MetricFields lists the seven numeric JSON fields in form order.
var MetricFields = []string{
	"Monthly_Revenue",
	"Customer_Retention_Rate",
	"Customer_Acquisition_Cost",
	"Working_Capital_Cycle_Days",
	"Inventory_Turnover_Ratio",
	"Operational_Efficiency_Ratio",
	"Employee_Productivity",
}

type AnalysisReport struct {
	Success   bool   `json:"success"`
	JobID     string `json:"jobId"`
	Report    string `json:"report"`
	Timestamp string `json:"timestamp"`
}
