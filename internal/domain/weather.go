package domain

import (
	"fmt"
	"math"
)

// WeatherSnapshot is the current weather for a location, supplied by a weather provider.
type WeatherSnapshot struct {
	Location      string
	Temperature   float64 // °C
	Humidity      float64 // %
	Precipitation float64 // mm
	WindSpeed     float64 // km/h
	Condition     string  // provider text, e.g. "Sunny"
	UVIndex       float64
	Pressure      float64 // mb
}

// Validate rejects non-finite readings.
func (w *WeatherSnapshot) Validate() error {
	if w == nil {
		return fmt.Errorf("nil weather snapshot")
	}
	readings := map[string]float64{
		"temperature":   w.Temperature,
		"humidity":      w.Humidity,
		"precipitation": w.Precipitation,
		"wind_speed":    w.WindSpeed,
		"uv_index":      w.UVIndex,
		"pressure":      w.Pressure,
	}
	for name, v := range readings {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weather %s is not finite", name)
		}
	}
	return nil
}
