package insights

import (
	"fmt"
	"strconv"
	"strings"

	"subsidy-lab/internal/domain"
)

func systemPrompt(result *domain.SimulationResult) string {
	var b strings.Builder
	b.WriteString("Agricultural Subsidy Simulation Analysis:\n\n")
	fmt.Fprintf(&b, "Districts analyzed: %s\n", strings.Join(districts(result), ", "))
	writeResultLines(&b, result)
	b.WriteString("\nKey challenges identified:\n")
	b.WriteString("- e-KYC completion gaps\n")
	b.WriteString("- Payment delay issues\n")
	b.WriteString("- Digital literacy barriers\n")
	b.WriteString("- Biometric authentication failures\n\n")
	b.WriteString("Weather conditions and agricultural context should be considered for subsidy effectiveness.\n\n")
	b.WriteString("Generate specific, actionable insights for improving subsidy delivery and farmer outcomes.\n")
	return b.String()
}

func locationPrompt(location string, w *domain.WeatherSnapshot, result *domain.SimulationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agricultural Subsidy Analysis for %s, India:\n\n", location)

	b.WriteString("Current Weather Conditions:\n")
	if w != nil {
		fmt.Fprintf(&b, "- Temperature: %s°C\n", num(w.Temperature))
		fmt.Fprintf(&b, "- Humidity: %s%%\n", num(w.Humidity))
		fmt.Fprintf(&b, "- Precipitation: %smm\n", num(w.Precipitation))
		fmt.Fprintf(&b, "- Wind Speed: %s km/h\n", num(w.WindSpeed))
		fmt.Fprintf(&b, "- Weather Condition: %s\n", w.Condition)
		fmt.Fprintf(&b, "- UV Index: %s\n", num(w.UVIndex))
	} else {
		b.WriteString("- Not available\n")
	}

	fmt.Fprintf(&b, "\nDistrict Context: %s\n", location)
	b.WriteString("- Known for specific agricultural practices and crops\n")
	b.WriteString("- Local challenges and opportunities\n")
	b.WriteString("- Regional subsidy effectiveness patterns\n\n")

	b.WriteString("Simulation Results:\n")
	writeResultLines(&b, result)

	b.WriteString("\nGenerate location-specific insights considering:\n")
	b.WriteString("1. Local weather impact on agriculture\n")
	b.WriteString("2. Regional crop patterns and farming practices\n")
	b.WriteString("3. District-specific infrastructure challenges\n")
	b.WriteString("4. Local farmer demographics and needs\n")
	b.WriteString("5. Weather-based subsidy recommendations\n\n")
	fmt.Fprintf(&b, "Provide actionable insights for %s district specifically.\n", location)
	return b.String()
}

func writeResultLines(b *strings.Builder, result *domain.SimulationResult) {
	var triggered int
	var farmers, payout int64
	if result != nil {
		triggered = len(result.TriggeredSubsidies)
		farmers = result.Summary.TotalFarmersImpacted
		payout = result.Summary.TotalPayout
	}
	fmt.Fprintf(b, "Triggered subsidies: %d\n", triggered)
	fmt.Fprintf(b, "Total farmers affected: %d\n", farmers)
	fmt.Fprintf(b, "Total payout: ₹%s\n", groupDigits(payout))
}

// districts lists the regions of triggered subsidies in first-seen order.
func districts(result *domain.SimulationResult) []string {
	if result == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range result.TriggeredSubsidies {
		if !seen[s.Region] {
			seen[s.Region] = true
			out = append(out, s.Region)
		}
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
