package mollier

import (
	"fmt"
	"strconv"

	"github.com/i474232898/mollier-diagram/internal/psychro"
)

// Rejection records a sample that could not be placed on the diagram.
type Rejection struct {
	Sample Sample
	Err    error
}

// BuildTrace converts aligned samples into a plotted trace. Samples outside
// the formula domain are left out and returned as rejections; input order is
// preserved for the rest.
func BuildTrace(sensor SensorSpec, samples []Sample, pressureKPa float64) (Trace, []Rejection) {
	trace := Trace{
		Name:   sensor.Name,
		Color:  sensor.Color,
		Points: make([]EnthalpyPoint, 0, len(samples)),
	}
	var rejected []Rejection
	for _, s := range samples {
		p, err := enthalpyPoint(s, pressureKPa)
		if err != nil {
			rejected = append(rejected, Rejection{Sample: s, Err: err})
			continue
		}
		trace.Points = append(trace.Points, p)
	}
	return trace, rejected
}

func enthalpyPoint(s Sample, pressureKPa float64) (EnthalpyPoint, error) {
	h, err := psychro.Enthalpy(s.TemperatureC, s.RelativeHumidityPct, pressureKPa)
	if err != nil {
		return EnthalpyPoint{}, err
	}
	dp, err := psychro.DewPoint(s.TemperatureC, s.RelativeHumidityPct)
	if err != nil {
		return EnthalpyPoint{}, err
	}
	return EnthalpyPoint{
		Timestamp:           s.Timestamp,
		TemperatureC:        s.TemperatureC,
		RelativeHumidityPct: s.RelativeHumidityPct,
		EnthalpyKJPerKg:     h,
		DewPointC:           dp,
		Text:                pointText(s.TemperatureC, s.RelativeHumidityPct, h, dp),
	}, nil
}

func pointText(tempC, rhPct, enthalpy, dewPoint float64) string {
	return fmt.Sprintf("Temperature: %s°C\nHumidity: %s%%\nEnthalpy: %.1f kJ/kg\nDew point: %.1f°C",
		strconv.FormatFloat(tempC, 'f', -1, 64),
		strconv.FormatFloat(rhPct, 'f', -1, 64),
		enthalpy, dewPoint)
}
