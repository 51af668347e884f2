package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderCSV renders subsidy rows as CSV string.
func RenderCSV(rows []SubsidyRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"scheme_name", "condition", "region", "amount", "eligible_farmers", "total_payout"})
	for _, s := range rows {
		_ = w.Write([]string{
			s.SchemeName,
			s.Condition,
			s.Region,
			strconv.FormatInt(s.Amount, 10),
			strconv.FormatInt(s.EligibleFarmers, 10),
			strconv.FormatInt(s.TotalPayout, 10),
		})
	}

	w.Flush()
	return sb.String()
}

// RenderDistrictCSV renders district rows as CSV string.
// Risk factors are joined with ';'.
func RenderDistrictCSV(rows []DistrictRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"region", "farmers", "efficiency_percent", "status", "primary_challenge", "risk_score", "risk_level", "risk_factors"})
	for _, d := range rows {
		_ = w.Write([]string{
			d.Region,
			strconv.FormatInt(d.Farmers, 10),
			strconv.FormatFloat(d.EfficiencyPercent, 'f', 1, 64),
			d.Status,
			d.PrimaryChallenge,
			strconv.Itoa(d.RiskScore),
			d.RiskLevel,
			strings.Join(d.RiskFactors, ";"),
		})
	}

	w.Flush()
	return sb.String()
}
