package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Subsidy Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Mode: %s | Trigger: %s | Run at: %s\n\n",
		r.RunID, r.Mode, r.Trigger, r.RunAt.Format(time.RFC3339)))

	// Conditions
	sb.WriteString("## Reference Conditions\n\n")
	if c := r.Conditions; c != nil {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Region | %s |\n", c.Region))
		sb.WriteString(fmt.Sprintf("| Rainfall (mm) | %.1f |\n", c.Rainfall))
		sb.WriteString(fmt.Sprintf("| Temperature (°C) | %.1f |\n", c.Temperature))
		sb.WriteString(fmt.Sprintf("| Soil pH | %.1f |\n", c.SoilPH))
		sb.WriteString(fmt.Sprintf("| Crop health (NDVI) | %.2f |\n", c.CropHealth))
		sb.WriteString(fmt.Sprintf("| Data sources | %s |\n", c.DataSources))
	} else {
		sb.WriteString("Reference region not available.\n")
	}
	sb.WriteString("\n")

	// Rule health
	sb.WriteString("## Rule Health\n\n")
	sb.WriteString("| Check | Threshold | Actual | Status |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, check := range r.RuleHealth.Checks {
		status := "FAIL"
		if check.Pass {
			status = "PASS"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			check.Name, check.Threshold, check.Actual, status))
	}
	sb.WriteString("\n")
	if r.RuleHealth.AllChecksPassed {
		sb.WriteString("**All checks passed.**\n\n")
	} else {
		sb.WriteString("**Some checks failed.** Affected rules did not contribute to the totals.\n\n")
	}

	// Subsidies
	sb.WriteString("## Triggered Subsidies\n\n")
	writeSubsidyTable(&sb, r.Subsidies, "No subsidies triggered.")
	sb.WriteString(fmt.Sprintf("Rules: %d evaluated, %d triggered | Farmers impacted: %d | Total payout: ₹%d\n\n",
		r.Totals.RulesEvaluated, r.Totals.RulesTriggered, r.Totals.FarmersImpacted, r.Totals.TotalPayout))

	// Realistic mode sections
	if len(r.Challenges) > 0 {
		sb.WriteString("## Delivery Challenges\n\n")
		for _, c := range r.Challenges {
			sb.WriteString(fmt.Sprintf("- %s\n", c))
		}
		sb.WriteString("\n")
	}
	if se := r.SystemEfficiency; se != nil {
		sb.WriteString("## System Efficiency\n\n")
		sb.WriteString("| Metric | Percent |\n")
		sb.WriteString("|--------|---------|\n")
		sb.WriteString(fmt.Sprintf("| Avg e-KYC completion | %.1f |\n", se.IdentityCompletion))
		sb.WriteString(fmt.Sprintf("| Avg payment delay | %.1f |\n", se.PaymentDelay))
		sb.WriteString(fmt.Sprintf("| Avg amount adequacy | %.1f |\n", se.AmountAdequacy))
		sb.WriteString(fmt.Sprintf("| Overall score | %.1f |\n", se.OverallScore))
		sb.WriteString("\n")
	}

	// Weather
	if w := r.Weather; w != nil {
		sb.WriteString("## Weather Adjustment\n\n")
		if w.Error != "" {
			sb.WriteString(fmt.Sprintf("Not applied: %s\n\n", w.Error))
		} else {
			sb.WriteString(fmt.Sprintf("%s: %s, %.1f°C, %.1fmm precipitation\n\n",
				w.Location, w.Condition, w.Temperature, w.Precipitation))
			sb.WriteString(fmt.Sprintf("Impact: %.2f | Enhancement factor: %.2f | Severity: %s\n\n",
				w.TotalImpact, w.Factor, w.Severity))
			if w.EmergencyAdded {
				sb.WriteString(fmt.Sprintf("Emergency relief added for %d farmers.\n\n", w.EmergencyEligible))
			}
			writeSubsidyTable(&sb, w.Adjusted, "No adjusted subsidies.")
			sb.WriteString(fmt.Sprintf("Adjusted payout: ₹%d\n\n", w.AdjustedPayout))
		}
	}

	// Districts
	sb.WriteString("## District Scores\n\n")
	if len(r.Districts) > 0 {
		sb.WriteString("| District | Farmers | Efficiency% | Status | Primary Challenge | Risk | Level | Factors |\n")
		sb.WriteString("|----------|---------|-------------|--------|-------------------|------|-------|---------|\n")
		for _, d := range r.Districts {
			factors := strings.Join(d.RiskFactors, ", ")
			if factors == "" {
				factors = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %.1f | %s | %s | %d | %s | %s |\n",
				d.Region, d.Farmers, d.EfficiencyPercent, d.Status, d.PrimaryChallenge,
				d.RiskScore, d.RiskLevel, factors))
		}
	} else {
		sb.WriteString("No district data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeSubsidyTable(sb *strings.Builder, rows []SubsidyRow, empty string) {
	if len(rows) == 0 {
		sb.WriteString(empty + "\n\n")
		return
	}
	sb.WriteString("| Scheme | Condition | Region | Amount | Eligible | Payout |\n")
	sb.WriteString("|--------|-----------|--------|--------|----------|--------|\n")
	for _, s := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | %d |\n",
			s.SchemeName, s.Condition, s.Region, s.Amount, s.EligibleFarmers, s.TotalPayout))
	}
	sb.WriteString("\n")
}
