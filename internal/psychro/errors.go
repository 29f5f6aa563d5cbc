package psychro

import "errors"

var (
	ErrNonFinite                       = errors.New("non-finite input")
	ErrTemperatureOutOfDomain          = errors.New("temperature at or below -237.3 °C")
	ErrRelativeHumidityOutOfRange      = errors.New("relative humidity outside [0, 100]")
	ErrNonPositivePressure             = errors.New("atmospheric pressure must be positive")
	ErrVaporPressureExceedsAtmospheric = errors.New("vapor pressure reaches atmospheric pressure")
	ErrDewPointUndefined               = errors.New("dew point undefined for zero relative humidity")
	ErrDewPointUnstable                = errors.New("dew point unstable near saturation singularity")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrNonFinite, "non_finite"},
	{ErrTemperatureOutOfDomain, "temperature_out_of_domain"},
	{ErrRelativeHumidityOutOfRange, "humidity_out_of_range"},
	{ErrNonPositivePressure, "non_positive_pressure"},
	{ErrVaporPressureExceedsAtmospheric, "vapor_pressure_exceeds_atmospheric"},
	{ErrDewPointUndefined, "dew_point_undefined"},
	{ErrDewPointUnstable, "dew_point_unstable"},
}

// Reason maps a domain error to a stable label for metrics and reports.
// Errors not produced by this package map to "other".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

// IsDomainError reports whether err stems from invalid formula input.
func IsDomainError(err error) bool {
	return err != nil && Reason(err) != "other"
}
