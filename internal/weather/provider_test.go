package weather

import (
	"context"
	"testing"

	"subsidy-lab/internal/domain"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"Sangrur", "Sangrur, Punjab"},
		{"Fatehgarh Sahib", "Fatehgarh Sahib, Punjab"},
		{"ludhiana", "ludhiana, Punjab"},
		{"Ahmedabad", "Ahmedabad, India"},
		{" Pune ", "Pune, India"},
	}

	for _, tt := range tests {
		if got := Location(tt.region); got != tt.want {
			t.Errorf("Location(%q) = %q, want %q", tt.region, got, tt.want)
		}
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(
		domain.WeatherSnapshot{Temperature: 30, Condition: "Clear"},
		map[string]domain.WeatherSnapshot{
			"Delhi": {Location: "New Delhi", Temperature: 44, Condition: "Hot"},
		},
	)

	w, err := p.Current(context.Background(), "delhi")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if w.Temperature != 44 || w.Location != "New Delhi" {
		t.Errorf("unexpected reading: %+v", w)
	}

	w, err = p.Current(context.Background(), "Patiala")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if w.Temperature != 30 || w.Location != "Patiala, Punjab" {
		t.Errorf("unexpected fallback reading: %+v", w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Current(ctx, "Delhi"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestStaticProvider_PaddedKeys(t *testing.T) {
	p := NewStaticProvider(
		domain.WeatherSnapshot{Temperature: 30},
		map[string]domain.WeatherSnapshot{
			" Ludhiana": {Temperature: 41},
			"Bathinda\n": {Temperature: 43},
		},
	)

	for region, want := range map[string]float64{"Ludhiana": 41, "ludhiana ": 41, "BATHINDA": 43} {
		w, err := p.Current(context.Background(), region)
		if err != nil {
			t.Fatalf("Current(%q) failed: %v", region, err)
		}
		if w.Temperature != want {
			t.Errorf("Current(%q) temperature = %v, want %v", region, w.Temperature, want)
		}
	}
}
