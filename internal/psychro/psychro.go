// Package psychro implements the closed-form psychrometric relations used by
// the Mollier diagram: saturation vapor pressure (Magnus form), humidity
// ratio, moist-air enthalpy and dew point.
//
// Units are fixed and carried in parameter names: temperatures in °C,
// relative humidity in percent, pressures in kPa, enthalpy in kJ per kg of
// dry air. Every function validates its domain and returns an error wrapping
// one of the package sentinels instead of producing NaN or ±Inf.
package psychro

import (
	"errors"
	"fmt"
	"math"
)

// Magnus coefficients (Tetens form, tuned for kPa and °C).
const (
	magnusA     = 17.27
	magnusB     = 237.3
	magnusScale = 0.61078

	// molecular weight ratio water vapor / dry air
	epsilon = 0.622

	cpDryAir   = 1.006 // kJ/(kg·K)
	cpVapor    = 1.86  // kJ/(kg·K)
	latentHeat = 2501  // kJ/kg at 0 °C

	dewPointInstability = 1e-9
)

// State is the full set of derived quantities for one air state.
type State struct {
	TemperatureC          float64 `json:"temperatureC"`
	RelativeHumidityPct   float64 `json:"relativeHumidityPct"`
	PressureKPa           float64 `json:"pressureKPa"`
	SaturationPressureKPa float64 `json:"saturationPressureKPa"`
	VaporPressureKPa      float64 `json:"vaporPressureKPa"`
	HumidityRatioKgPerKg  float64 `json:"humidityRatioKgPerKg"`
	EnthalpyKJPerKg       float64 `json:"enthalpyKJPerKg"`

	// DewPointC is nil when the dew point is undefined for this state (dry
	// air, or an unstable Magnus inversion); DewPointReason then names why.
	DewPointC      *float64 `json:"dewPointC,omitempty"`
	DewPointReason string   `json:"dewPointReason,omitempty"`
}

// SaturationVaporPressure returns the saturation vapor pressure in kPa at
// tempC.
func SaturationVaporPressure(tempC float64) (float64, error) {
	if err := checkTemperature(tempC); err != nil {
		return 0, err
	}
	return magnusScale * math.Exp(magnusA*tempC/(tempC+magnusB)), nil
}

// PartialVaporPressure returns the water vapor partial pressure in kPa for
// air at tempC and rhPct relative humidity.
func PartialVaporPressure(tempC, rhPct float64) (float64, error) {
	if err := checkRelativeHumidity(rhPct); err != nil {
		return 0, err
	}
	psat, err := SaturationVaporPressure(tempC)
	if err != nil {
		return 0, err
	}
	return rhPct / 100 * psat, nil
}

// HumidityRatio returns the mass of water vapor per mass of dry air (kg/kg).
// The vapor partial pressure must stay strictly below pressureKPa.
func HumidityRatio(tempC, rhPct, pressureKPa float64) (float64, error) {
	if err := checkPressure(pressureKPa); err != nil {
		return 0, err
	}
	pv, err := PartialVaporPressure(tempC, rhPct)
	if err != nil {
		return 0, err
	}
	if pv >= pressureKPa {
		return 0, fmt.Errorf("%w: vapor pressure %.4f kPa >= %.4f kPa", ErrVaporPressureExceedsAtmospheric, pv, pressureKPa)
	}
	return epsilon * pv / (pressureKPa - pv), nil
}

// Enthalpy returns the specific enthalpy of moist air in kJ/kg of dry air.
func Enthalpy(tempC, rhPct, pressureKPa float64) (float64, error) {
	w, err := HumidityRatio(tempC, rhPct, pressureKPa)
	if err != nil {
		return 0, err
	}
	return cpDryAir*tempC + w*(latentHeat+cpVapor*tempC), nil
}

// DewPoint inverts the Magnus formula. A relative humidity of zero has no dew
// point and is rejected rather than passed to the logarithm.
func DewPoint(tempC, rhPct float64) (float64, error) {
	if err := checkTemperature(tempC); err != nil {
		return 0, err
	}
	if err := checkRelativeHumidity(rhPct); err != nil {
		return 0, err
	}
	if rhPct <= 0 {
		return 0, fmt.Errorf("%w: relative humidity %.2f%%", ErrDewPointUndefined, rhPct)
	}
	alpha := magnusA*tempC/(magnusB+tempC) + math.Log(rhPct/100)
	denom := magnusA - alpha
	if math.Abs(denom) < dewPointInstability {
		return 0, fmt.Errorf("%w: alpha %.9f", ErrDewPointUnstable, alpha)
	}
	return magnusB * alpha / denom, nil
}

// Compute derives every quantity for one air state. A state whose dew point
// is undefined is still returned, with DewPointC left nil.
func Compute(tempC, rhPct, pressureKPa float64) (State, error) {
	psat, err := SaturationVaporPressure(tempC)
	if err != nil {
		return State{}, err
	}
	pv, err := PartialVaporPressure(tempC, rhPct)
	if err != nil {
		return State{}, err
	}
	w, err := HumidityRatio(tempC, rhPct, pressureKPa)
	if err != nil {
		return State{}, err
	}
	h, err := Enthalpy(tempC, rhPct, pressureKPa)
	if err != nil {
		return State{}, err
	}
	st := State{
		TemperatureC:          tempC,
		RelativeHumidityPct:   rhPct,
		PressureKPa:           pressureKPa,
		SaturationPressureKPa: psat,
		VaporPressureKPa:      pv,
		HumidityRatioKgPerKg:  w,
		EnthalpyKJPerKg:       h,
	}
	dp, err := DewPoint(tempC, rhPct)
	switch {
	case err == nil:
		st.DewPointC = &dp
	case errors.Is(err, ErrDewPointUndefined), errors.Is(err, ErrDewPointUnstable):
		st.DewPointReason = Reason(err)
	default:
		return State{}, err
	}
	return st, nil
}

func checkTemperature(tempC float64) error {
	if !finite(tempC) {
		return fmt.Errorf("%w: temperature %v", ErrNonFinite, tempC)
	}
	if tempC <= -magnusB {
		return fmt.Errorf("%w: %.2f °C", ErrTemperatureOutOfDomain, tempC)
	}
	return nil
}

func checkRelativeHumidity(rhPct float64) error {
	if !finite(rhPct) {
		return fmt.Errorf("%w: relative humidity %v", ErrNonFinite, rhPct)
	}
	if rhPct < 0 || rhPct > 100 {
		return fmt.Errorf("%w: %.2f%%", ErrRelativeHumidityOutOfRange, rhPct)
	}
	return nil
}

func checkPressure(pressureKPa float64) error {
	if !finite(pressureKPa) {
		return fmt.Errorf("%w: pressure %v", ErrNonFinite, pressureKPa)
	}
	if pressureKPa <= 0 {
		return fmt.Errorf("%w: %.4f kPa", ErrNonPositivePressure, pressureKPa)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
