package mollier

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/mollier-diagram/internal/psychro"
)

const seaLevelKPa = 101.325

var livingRoom = SensorSpec{
	Name:              "Living room",
	TemperatureEntity: "sensor.living_temperature",
	HumidityEntity:    "sensor.living_humidity",
	Color:             "red",
}

func TestBuildTrace(t *testing.T) {
	samples := []Sample{
		{Timestamp: t0, TemperatureC: 20, RelativeHumidityPct: 50},
		{Timestamp: t0.Add(time.Minute), TemperatureC: 21, RelativeHumidityPct: 0},
		{Timestamp: t0.Add(2 * time.Minute), TemperatureC: 22.5, RelativeHumidityPct: 55},
	}

	trace, rejected := BuildTrace(livingRoom, samples, seaLevelKPa)

	assert.Equal(t, "Living room", trace.Name)
	assert.Equal(t, "red", trace.Color)
	require.Len(t, trace.Points, 2)
	assert.Equal(t, t0, trace.Points[0].Timestamp)
	assert.Equal(t, t0.Add(2*time.Minute), trace.Points[1].Timestamp)
	assert.InDelta(t, 38.6, trace.Points[0].EnthalpyKJPerKg, 0.5)
	assert.InDelta(t, 9.3, trace.Points[0].DewPointC, 0.1)

	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, psychro.ErrDewPointUndefined)
	assert.Equal(t, 21.0, rejected[0].Sample.TemperatureC)

	for _, p := range trace.Points {
		assert.False(t, math.IsNaN(p.EnthalpyKJPerKg) || math.IsInf(p.EnthalpyKJPerKg, 0))
		assert.False(t, math.IsNaN(p.DewPointC) || math.IsInf(p.DewPointC, 0))
	}
}

func TestBuildTrace_PointText(t *testing.T) {
	trace, _ := BuildTrace(livingRoom, []Sample{{Timestamp: t0, TemperatureC: 20, RelativeHumidityPct: 50}}, seaLevelKPa)
	require.Len(t, trace.Points, 1)

	lines := strings.Split(trace.Points[0].Text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Temperature: 20°C", lines[0])
	assert.Equal(t, "Humidity: 50%", lines[1])
	assert.Equal(t, "Enthalpy: 38.5 kJ/kg", lines[2])
	assert.Equal(t, "Dew point: 9.3°C", lines[3])
}

func TestBuildTrace_Empty(t *testing.T) {
	trace, rejected := BuildTrace(livingRoom, nil, seaLevelKPa)
	assert.Empty(t, trace.Points)
	assert.NotNil(t, trace.Points)
	assert.Empty(t, rejected)
}

func TestBuildTrace_PressureBelowVaporPressure(t *testing.T) {
	samples := []Sample{{Timestamp: t0, TemperatureC: 40, RelativeHumidityPct: 90}}
	trace, rejected := BuildTrace(livingRoom, samples, 5)
	assert.Empty(t, trace.Points)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, psychro.ErrVaporPressureExceedsAtmospheric)
}

func TestReferenceCurves(t *testing.T) {
	curves := ReferenceCurves(seaLevelKPa)

	require.Len(t, curves, 10)
	for i, c := range curves {
		assert.Equal(t, float64(10*(i+1)), c.RelativeHumidityPct)
		require.Len(t, c.Points, 61, c.Name)
		assert.Equal(t, -10.0, c.Points[0].TemperatureC)
		assert.Equal(t, 50.0, c.Points[60].TemperatureC)
		for j := 1; j < len(c.Points); j++ {
			assert.Greater(t, c.Points[j].TemperatureC, c.Points[j-1].TemperatureC)
		}
	}
	assert.Equal(t, "RH 10%", curves[0].Name)
	assert.Equal(t, "RH 100%", curves[9].Name)

	// Higher RH lies above lower RH at every temperature.
	for i := 1; i < len(curves); i++ {
		for j := range curves[i].Points {
			assert.Greater(t, curves[i].Points[j].EnthalpyKJPerKg, curves[i-1].Points[j].EnthalpyKJPerKg)
		}
	}
}

func TestReferenceCurves_LowPressureDropsInvalidPoints(t *testing.T) {
	// psat(50 °C) is about 12.3 kPa, so saturated air above ~46 °C is out of domain.
	curves := ReferenceCurves(10)
	require.Len(t, curves, 10)
	assert.Len(t, curves[0].Points, 61)
	assert.Less(t, len(curves[9].Points), 61)
	for _, p := range curves[9].Points {
		assert.False(t, math.IsNaN(p.EnthalpyKJPerKg) || math.IsInf(p.EnthalpyKJPerKg, 0))
	}
}

func TestComfortZones(t *testing.T) {
	specs := []ComfortZoneSpec{
		{Name: "Comfort", TMinC: 20, TMaxC: 25, RHMinPct: 40, RHMaxPct: 60, FillColor: "rgba(0,255,0,0.2)"},
		{Name: "Winter", TMinC: 18, TMaxC: 21, RHMinPct: 30, RHMaxPct: 50, FillColor: "#0000ff33"},
	}

	regions, errs := ComfortZones(specs, seaLevelKPa)

	require.Empty(t, errs)
	require.Len(t, regions, 2)
	r := regions[0]
	assert.Equal(t, 20.0, r.X0)
	assert.Equal(t, 25.0, r.X1)
	assert.Less(t, r.Y0, r.Y1)
	assert.Equal(t, "rgba(0,255,0,0.2)", r.FillColor)
	assert.Equal(t, LayerBelow, r.Layer)
	assert.Equal(t, "Winter", regions[1].Name)

	y0, err := psychro.Enthalpy(20, 40, seaLevelKPa)
	require.NoError(t, err)
	assert.Equal(t, y0, r.Y0)
}

func TestComfortZones_InvalidZoneIsSkipped(t *testing.T) {
	specs := []ComfortZoneSpec{
		{Name: "Broken", TMinC: 20, TMaxC: 25, RHMinPct: 40, RHMaxPct: 140, FillColor: "red"},
		{Name: "Fine", TMinC: 20, TMaxC: 25, RHMinPct: 40, RHMaxPct: 60, FillColor: "green"},
	}

	regions, errs := ComfortZones(specs, seaLevelKPa)

	require.Len(t, regions, 1)
	assert.Equal(t, "Fine", regions[0].Name)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], psychro.ErrRelativeHumidityOutOfRange)
	assert.Contains(t, errs[0].Error(), "Broken")
}

func TestComfortZones_None(t *testing.T) {
	regions, errs := ComfortZones(nil, seaLevelKPa)
	assert.Empty(t, regions)
	assert.Empty(t, errs)
}
