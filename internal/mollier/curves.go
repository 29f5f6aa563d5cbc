package mollier

import (
	"fmt"

	"github.com/i474232898/mollier-diagram/internal/psychro"
)

// Reference grid: iso-RH lines every 10 % across -10..50 °C in 1 °C steps.
const (
	CurveMinTempC  = -10
	CurveMaxTempC  = 50
	CurveStepC     = 1
	CurveRHStepPct = 10
)

// ReferenceCurves builds the constant relative humidity grid for the given
// pressure, ordered by increasing RH. Points that fall outside the formula
// domain at this pressure are omitted.
func ReferenceCurves(pressureKPa float64) []Curve {
	curves := make([]Curve, 0, 100/CurveRHStepPct)
	for rh := CurveRHStepPct; rh <= 100; rh += CurveRHStepPct {
		curve := Curve{
			Name:                fmt.Sprintf("RH %d%%", rh),
			RelativeHumidityPct: float64(rh),
			Points:              make([]CurvePoint, 0, (CurveMaxTempC-CurveMinTempC)/CurveStepC+1),
		}
		for t := CurveMinTempC; t <= CurveMaxTempC; t += CurveStepC {
			h, err := psychro.Enthalpy(float64(t), float64(rh), pressureKPa)
			if err != nil {
				continue
			}
			curve.Points = append(curve.Points, CurvePoint{TemperatureC: float64(t), EnthalpyKJPerKg: h})
		}
		curves = append(curves, curve)
	}
	return curves
}
