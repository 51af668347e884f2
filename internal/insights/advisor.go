package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
)

const (
	defaultAdvisorTimeout = 15 * time.Second

	systemExcerptLimit   = 200
	locationExcerptLimit = 150

	// Financial impact estimate range, percent.
	minImprovement = 15
	maxImprovement = 35
)

// Options configures an Advisor.
type Options struct {
	// Generator may be nil; every report is then a fallback.
	Generator Generator
	Timeout   time.Duration
	// Rand need not be goroutine-safe; the advisor serializes draws.
	Rand      eligibility.Rand
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Advisor builds structured insight reports around generated narrative.
// It is safe for concurrent use.
type Advisor struct {
	gen     Generator
	timeout time.Duration
	clock   func() time.Time
	logger  *slog.Logger

	mu  sync.Mutex // guards rng
	rng eligibility.Rand
}

// NewAdvisor creates an Advisor.
func NewAdvisor(opts Options) *Advisor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAdvisorTimeout
	}
	if opts.Rand == nil {
		opts.Rand = eligibility.NewRand(uint64(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Advisor{
		gen:     opts.Generator,
		timeout: opts.Timeout,
		rng:     opts.Rand,
		clock:   opts.Clock,
		logger:  opts.Logger.With("component", "insights"),
	}
}

func (a *Advisor) draw() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

// System produces the system-wide report for a simulation result.
// It never fails: generator errors yield the fallback advisory.
func (a *Advisor) System(ctx context.Context, result *domain.SimulationResult) Report {
	text, err := a.generate(ctx, systemPrompt(result))
	if err != nil {
		a.logger.Warn("system insights degraded to fallback", "error", err)
		return systemFallback(a.clock(), err)
	}

	improvement := minImprovement + int(a.draw()*float64(maxImprovement-minImprovement+1))
	if improvement > maxImprovement {
		improvement = maxImprovement
	}

	insights := []Insight{
		{
			Category:   "Operational Efficiency",
			Text:       excerpt(text, systemExcerptLimit),
			Confidence: 0.85,
			Recommendations: []string{
				"Deploy mobile e-KYC units in low-connectivity areas",
				"Implement offline-first biometric systems",
				"Create multilingual digital literacy programs",
			},
			RiskFactors: []string{
				"Infrastructure limitations in rural areas",
				"Resistance to digital adoption among elderly farmers",
				"Network connectivity issues during peak seasons",
			},
		},
		{
			Category:   "Financial Impact",
			Text:       fmt.Sprintf("Analysis shows potential for %d%% improvement in subsidy delivery efficiency with targeted interventions.", improvement),
			Confidence: 0.92,
			Recommendations: []string{
				"Prioritize districts with highest farmer populations",
				"Implement predictive payment scheduling",
				"Create emergency subsidy pools for weather events",
			},
			RiskFactors: []string{
				"Budget constraints limiting coverage",
				"Fraud detection system limitations",
				"Delayed fund transfers during peak seasons",
			},
		},
		{
			Category:   "Technology Integration",
			Text:       "Integration of weather data with subsidy triggers can improve targeting accuracy by 25-40%.",
			Confidence: 0.88,
			Recommendations: []string{
				"Link weather alerts to emergency subsidy activation",
				"Use satellite imagery for crop damage assessment",
				"Implement blockchain for transparent fund tracking",
			},
			RiskFactors: []string{
				"Data integration complexity",
				"System interoperability challenges",
				"Cybersecurity vulnerabilities",
			},
		},
	}

	return Report{
		GeneratedAt:       a.clock(),
		Insights:          insights,
		AvgConfidence:     avgConfidence(insights),
		KeyRecommendation: "Focus on digital infrastructure development and farmer education programs",
	}
}

// ForLocation produces the district report used by enhanced simulations.
// w may be nil when no weather reading is available.
func (a *Advisor) ForLocation(ctx context.Context, location string, w *domain.WeatherSnapshot, result *domain.SimulationResult) Report {
	text, err := a.generate(ctx, locationPrompt(location, w, result))
	if err != nil {
		a.logger.Warn("location insights degraded to fallback", "location", location, "error", err)
		return locationFallback(a.clock(), location, err)
	}

	condition, temperature := "normal conditions", "25"
	weatherContext := "Normal"
	if w != nil {
		condition = w.Condition
		temperature = strconv.FormatFloat(w.Temperature, 'f', -1, 64)
		weatherContext = w.Condition
	}

	insights := []Insight{
		{
			Category: "Weather Impact Analysis",
			Text: fmt.Sprintf("Current weather conditions in %s indicate %s with %s°C temperature. ", location, condition, temperature) +
				excerpt(text, locationExcerptLimit),
			Confidence: 0.90,
			Recommendations: []string{
				fmt.Sprintf("Monitor weather patterns in %s for subsidy timing", location),
				"Adjust subsidy amounts based on local weather stress",
				"Implement weather-triggered emergency subsidies",
				fmt.Sprintf("Focus on %s-specific crop protection measures", location),
			},
			RiskFactors: []string{
				fmt.Sprintf("Weather variability in %s region", location),
				"Seasonal crop vulnerability",
				"Climate change adaptation needs",
				"Local infrastructure resilience",
			},
		},
		{
			Category:   "Regional Agricultural Context",
			Text:       fmt.Sprintf("Agricultural patterns in %s district require targeted subsidy approaches based on local farming practices and crop diversity.", location),
			Confidence: 0.87,
			Recommendations: []string{
				fmt.Sprintf("Customize subsidy schemes for %s's primary crops", location),
				"Support local agricultural cooperatives",
				"Promote region-specific sustainable farming practices",
				"Strengthen supply chain connections for local farmers",
			},
			RiskFactors: []string{
				"Market price volatility for local crops",
				"Limited access to modern farming techniques",
				"Seasonal labor availability",
				"Transportation and logistics challenges",
			},
		},
		{
			Category:   "Infrastructure & Technology",
			Text:       fmt.Sprintf("Digital infrastructure assessment for %s shows opportunities for improved subsidy delivery through targeted technology interventions.", location),
			Confidence: 0.85,
			Recommendations: []string{
				fmt.Sprintf("Deploy mobile service units in remote areas of %s", location),
				"Enhance digital literacy programs for local farmers",
				"Implement offline-capable payment systems",
				"Establish district-level support centers",
			},
			RiskFactors: []string{
				"Internet connectivity gaps in rural areas",
				"Low smartphone adoption among elderly farmers",
				"Language barriers in digital interfaces",
				"Limited technical support availability",
			},
		},
	}

	return Report{
		GeneratedAt:       a.clock(),
		Location:          location,
		Insights:          insights,
		AvgConfidence:     avgConfidence(insights),
		KeyRecommendation: fmt.Sprintf("Focus on weather-responsive and region-specific subsidy delivery for %s", location),
		WeatherContext:    weatherContext,
	}
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrGeneratorUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrGeneratorUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, ErrEmptyResponse)
	}
	return text, nil
}

func systemFallback(now time.Time, cause error) Report {
	insights := []Insight{{
		Category:   "System Analysis",
		Text:       "Simulation reveals critical gaps in digital infrastructure affecting subsidy delivery efficiency.",
		Confidence: 0.80,
		Recommendations: []string{
			"Strengthen digital infrastructure in rural areas",
			"Enhance biometric system reliability",
			"Improve payment processing systems",
		},
		RiskFactors: []string{
			"Limited internet connectivity",
			"Device compatibility issues",
			"User adoption challenges",
		},
	}}
	return Report{
		GeneratedAt:       now,
		Insights:          insights,
		AvgConfidence:     0.80,
		KeyRecommendation: "Prioritize infrastructure development",
		Fallback:          true,
		Note:              "AI service unavailable, using fallback analysis: " + cause.Error(),
	}
}

func locationFallback(now time.Time, location string, cause error) Report {
	if location == "" {
		location = "Selected District"
	}
	insights := []Insight{{
		Category:   "Location Analysis",
		Text:       fmt.Sprintf("Analysis for %s district shows potential for improved subsidy targeting based on local agricultural patterns and weather conditions.", location),
		Confidence: 0.75,
		Recommendations: []string{
			fmt.Sprintf("Implement location-specific subsidy criteria for %s", location),
			"Monitor local weather patterns for subsidy timing",
			"Strengthen digital infrastructure in the region",
			"Provide multilingual support for local farmers",
		},
		RiskFactors: []string{
			"Regional infrastructure limitations",
			"Local climate variability",
			"Farmer adoption challenges",
			"Administrative capacity constraints",
		},
	}}
	return Report{
		GeneratedAt:       now,
		Location:          location,
		Insights:          insights,
		AvgConfidence:     0.75,
		KeyRecommendation: fmt.Sprintf("Strengthen location-specific subsidy delivery for %s", location),
		Fallback:          true,
		Note:              "AI service unavailable, using location-aware fallback: " + cause.Error(),
	}
}

// excerpt cuts text to limit runes and marks the cut with an ellipsis.
func excerpt(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
