package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

func sampleDiagram(t *testing.T) mollier.Diagram {
	t.Helper()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	sensor := mollier.SensorSpec{Name: "Living room", TemperatureEntity: "t", HumidityEntity: "h", Color: "#ff0000"}
	snap := mollier.Snapshot{
		Window: mollier.NewWindow(now, 24*time.Hour),
		Series: []mollier.SensorSeries{
			{
				Sensor:      sensor,
				Temperature: []mollier.Reading{{Timestamp: now, Value: 21}, {Timestamp: now.Add(time.Minute), Value: 22}},
				Humidity:    []mollier.Reading{{Timestamp: now, Value: 45}, {Timestamp: now.Add(time.Minute), Value: 50}},
			},
			{Sensor: mollier.SensorSpec{Name: "Empty", Color: "blue"}},
		},
	}
	return mollier.Assemble(snap, mollier.AssembleOptions{
		PressureKPa: 101.325,
		Zones:       []mollier.ComfortZoneSpec{{Name: "Comfort", TMinC: 20, TMaxC: 25, RHMinPct: 40, RHMaxPct: 60, FillColor: "rgba(0,255,0,0.2)"}},
	}).Diagram
}

func TestRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleDiagram(t), Options{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRender_SVG(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Format: "SVG"}
	err := Render(&buf, sampleDiagram(t), opts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Living room")
	assert.NotContains(t, buf.String(), ">Empty<")
	assert.Equal(t, "image/svg+xml", opts.ContentType())
}

func TestOptions_ContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", Options{Format: "svg"}.ContentType())
	assert.Equal(t, "image/svg+xml", Options{Format: "Svg"}.ContentType())
	assert.Equal(t, "image/png", Options{Format: "PNG"}.ContentType())
	assert.Equal(t, "image/png", Options{}.ContentType())
}

func TestZoneSeries_KeepsFillAlpha(t *testing.T) {
	zs := zoneSeries(mollier.ZoneRegion{Name: "Comfort", X0: 20, X1: 25, Y0: 35, Y1: 55, FillColor: "rgba(0,255,0,0.2)"})

	assert.Equal(t, drawing.Color{G: 255, A: 51}, zs.Style.FillColor)
	assert.True(t, zs.Style.ShouldDrawFill())
	assert.True(t, zs.Style.ShouldDrawStroke(), "go-chart fills only stroked series")
	assert.Equal(t, []float64{20, 25, 25, 20, 20}, zs.XValues)
	assert.Equal(t, []float64{35, 35, 55, 55, 35}, zs.YValues)

	zs = zoneSeries(mollier.ZoneRegion{FillColor: "not-a-color"})
	assert.Equal(t, fallback, zs.Style.FillColor)
}

func TestRender_InvalidOptions(t *testing.T) {
	d := sampleDiagram(t)
	var buf bytes.Buffer

	err := Render(&buf, d, Options{Format: "gif"})
	require.ErrorIs(t, err, ErrInvalidOptions)

	err = Render(&buf, d, Options{Width: 10, Height: 10})
	require.ErrorIs(t, err, ErrInvalidOptions)

	err = Render(&buf, mollier.Diagram{}, Options{})
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want drawing.Color
	}{
		{"red", drawing.Color{R: 255, A: 255}},
		{" Blue ", drawing.Color{B: 255, A: 255}},
		{"#0f0", drawing.Color{G: 255, A: 255}},
		{"#1f77b4", drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 255}},
		{"#0000ff33", drawing.Color{B: 255, A: 0x33}},
		{"rgb(10, 20, 30)", drawing.Color{R: 10, G: 20, B: 30, A: 255}},
		{"rgba(0,255,0,0.2)", drawing.Color{G: 255, A: 51}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "chartreuse-ish", "#12345", "#zzzzzz", "rgb(1,2)", "rgb(1,2,300)", "rgba(1,2,3,2)"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestAxisLabel(t *testing.T) {
	assert.Equal(t, "Temperature (°C)", axisLabel(mollier.Axis{Title: "Temperature", Unit: "°C"}))
	assert.Equal(t, "Enthalpy", axisLabel(mollier.Axis{Title: "Enthalpy"}))
}
