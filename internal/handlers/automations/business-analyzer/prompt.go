package businessanalyzer

import (
	"bytes"
	"fmt"
	"text/template"

	"growify-relay/internal/models"
)

const noBriefingLine = "No additional business context provided."

type templateData struct {
	*models.BusinessMetrics
	Derived  DerivedMetrics
	Briefing string
}

var templateFuncs = template.FuncMap{
	"inr":   FormatINR,
	"num":   FormatNumber,
	"fixed": Fixed,
	"whole": func(v float64) string { return Fixed(&v, 0) },
}

var (
	promptTemplate = template.Must(template.New("prompt").Funcs(templateFuncs).Parse(promptText))
	cannedTemplate = template.Must(template.New("canned").Funcs(templateFuncs).Parse(cannedReportText))
)

// BuildPrompt renders the analysis prompt for m.
func BuildPrompt(m *models.BusinessMetrics) (string, error) {
	return render(promptTemplate, m)
}

// CannedReport renders the templated report returned when no generator is
// configured.
func CannedReport(m *models.BusinessMetrics) (string, error) {
	return render(cannedTemplate, m)
}

func render(t *template.Template, m *models.BusinessMetrics) (string, error) {
	data := templateData{
		BusinessMetrics: m,
		Derived:         Derive(m),
		Briefing:        noBriefingLine,
	}
	if m.BusinessBriefing != "" {
		data.Briefing = `"` + m.BusinessBriefing + `"`
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

const promptText = `You are a TOP-TIER BUSINESS ANALYST with 20+ years of experience advising Fortune 500 companies and unicorn startups. You specialize in strategic growth, operational excellence, and ROI optimization. Your insights have helped businesses scale from ₹1 crore to ₹500+ crores.

**CLIENT BUSINESS METRICS (Current State Analysis):**

📊 **Revenue Metrics:**
- Monthly Revenue: ₹{{inr .MonthlyRevenue}}
- Annualized Revenue: ₹{{inr .Derived.AnnualRevenue}}
- Revenue Quality: Active business generating recurring income

👥 **Customer Metrics:**
- Customer Retention Rate: {{num .CustomerRetentionRate}}%
- Customer Acquisition Cost (CAC): ₹{{num .CustomerAcquisitionCost}}
- Estimated Customer Lifetime Value (LTV): ₹{{inr .Derived.LifetimeValue}}
- LTV:CAC Ratio: {{fixed .Derived.LTVToCAC 2}}:1

💰 **Financial Health:**
- Working Capital Cycle: {{num .WorkingCapitalCycleDays}} days
- Cash Flow Position: {{.Derived.CashFlowPosition}}

📦 **Operational Metrics:**
- Inventory Turnover Ratio: {{num .InventoryTurnoverRatio}}x annually
- Days Inventory Held: {{fixed .Derived.InventoryDays 1}} days
- Operational Efficiency: {{num .OperationalEfficiencyRatio}}%

👔 **Human Capital:**
- Employee Productivity: ₹{{inr .EmployeeProductivity}}/employee/month
- Revenue per Employee Ratio: {{fixed .Derived.RevenuePerEmployee 1}}

**CLIENT'S BUSINESS CONTEXT:**
{{.Briefing}}

**CLIENT'S CRITICAL BUSINESS QUESTION:**
"{{.TargetedQuestion}}"

---

## YOUR ASSIGNMENT:

Provide a WORLD-CLASS, CONSULTING-GRADE business analysis that covers:

### 1. EXECUTIVE SUMMARY (200-300 words)
- Overall business health score (0-100 scale)
- Top 3 critical strengths
- Top 3 urgent weaknesses requiring immediate attention
- Single most important strategic insight

### 2. IMMEDIATE ACTIONS (Next 0-30 Days) - IMPLEMENT THIS WEEK
For each action provide:
- Specific step-by-step implementation
- Expected timeline
- Required resources/investment
- Expected outcome in rupees/percentage
- Priority ranking (Critical/High/Medium)

### 3. MEDIUM-TERM OPTIMIZATION (1-3 Months) - BUILD FOUNDATION
Provide 5-7 strategic initiatives that will:
- Improve operational efficiency by 15-25%
- Reduce costs by specific amounts
- Increase revenue through proven channels
- Each with ROI calculations

### 4. LONG-TERM STRATEGY (3-12 Months) - SCALE & DOMINATE
- Market expansion opportunities
- Revenue diversification strategies
- Technology automation roadmap
- Team scaling plan
- Projected revenue growth trajectory (quarterly milestones)

### 5. FINANCIAL PROJECTIONS & ROI ANALYSIS
- 12-month revenue projection by quarter
- Cost optimization projections
- Profit margin improvement forecast
- Payback period for recommended investments
- Expected overall business valuation increase

### 6. RISK ASSESSMENT & MITIGATION
- Top 5 business risks identified
- Probability and impact analysis
- Specific mitigation strategies for each
- Contingency plans

### 7. COMPETITIVE ADVANTAGE LEVERS
- What unique advantages to leverage NOW
- How to sustain competitive moat
- Positioning strategies

### 8. IMPLEMENTATION ROADMAP (90-Day Action Plan)
- Week-by-week action items (12 weeks)
- Resource allocation
- Success metrics (KPIs to track)
- Review checkpoints

### 9. CRITICAL NEXT STEPS (Start Today)
- First 3 things to do immediately
- Who needs to be involved
- Expected first week results

---

**ANALYSIS REQUIREMENTS:**
- Be EXTREMELY specific with numbers, percentages, and rupee amounts
- Reference industry benchmarks (Indian market context)
- Provide actionable, tested strategies
- Use markdown formatting for clarity
- Include emojis sparingly for visual break-up
- Write as if addressing the CEO directly
- Show confidence backed by data
- Challenge assumptions where appropriate
- Be concise yet comprehensive

**FORMATTING:**
Use proper markdown with ## for main sections, ### for subsections, **bold** for emphasis, and bullet points for clarity. Use Indian numbering (crores, lakhs) where appropriate.`

const cannedReportText = `# Business Analysis Report

## Executive Summary

Based on your business metrics:
- Monthly Revenue: ₹{{inr .MonthlyRevenue}}
- Customer Retention Rate: {{num .CustomerRetentionRate}}%
- Customer Acquisition Cost: ₹{{num .CustomerAcquisitionCost}}
- Working Capital Cycle: {{num .WorkingCapitalCycleDays}} days
- Inventory Turnover: {{num .InventoryTurnoverRatio}}
- Operational Efficiency: {{num .OperationalEfficiencyRatio}}%
- Employee Productivity: ₹{{inr .EmployeeProductivity}}/month/employee

## Your Question
{{.TargetedQuestion}}

## Analysis

### Immediate Actions (0-30 days)
1. **Optimize Customer Acquisition Cost**: Your CAC of ₹{{num .CustomerAcquisitionCost}} represents {{fixed .Derived.CACShareOfLTV 1}}% of customer lifetime value. Focus on reducing this by {{whole .Derived.CACReduction}}% through better targeting.

2. **Improve Working Capital Cycle**: Your {{num .WorkingCapitalCycleDays}}-day cycle can be reduced to 35-40 days by negotiating better payment terms and improving inventory management.

3. **Employee Productivity Enhancement**: Current productivity of ₹{{inr .EmployeeProductivity}}/employee/month can be increased by 20-25% through automation and better training.

### Medium-term Actions (1-3 months)
1. Customer retention optimization
2. Inventory turnover improvement
3. Operational efficiency enhancements

### Long-term Strategy (3-12 months)
1. Revenue growth through diversified channels
2. Technology integration for scalability
3. Market expansion opportunities

## Projected Impact

Implementing these recommendations is projected to:
- Increase monthly revenue by 25-40%
- Reduce CAC by 15-20%
- Improve working capital efficiency by 35%
- Enhance overall profitability by 30-50%

## Next Steps
1. Schedule a detailed consultation
2. Implement high-priority quick wins
3. Develop a 90-day action plan
4. Set up regular progress reviews`
