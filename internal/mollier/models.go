package mollier

import (
	"time"
)

// Axis titles of the rendered plane.
const (
	AxisTemperature = "Temperature"
	AxisEnthalpy    = "Enthalpy"

	UnitTemperature = "°C"
	UnitEnthalpy    = "kJ/kg"
)

// Reading is one raw history sample of a single quantity.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Sample is an aligned temperature/humidity pair.
type Sample struct {
	Timestamp           time.Time `json:"timestamp"`
	TemperatureC        float64   `json:"temperatureC"`
	RelativeHumidityPct float64   `json:"relativeHumidityPct"`
}

// SensorSpec names the two history entities that make up one plotted sensor.
// TemperatureEntity and HumidityEntity are identifiers understood by the
// configured history source.
type SensorSpec struct {
	Name              string `json:"name" validate:"required"`
	TemperatureEntity string `json:"temperatureEntity" validate:"required"`
	HumidityEntity    string `json:"humidityEntity" validate:"required"`
	Color             string `json:"color" validate:"required"`
}

// ComfortZoneSpec is a rectangle declared in (temperature, relative humidity)
// space.
type ComfortZoneSpec struct {
	Name      string  `json:"name"`
	TMinC     float64 `json:"tMinC"`
	TMaxC     float64 `json:"tMaxC" validate:"gtfield=TMinC"`
	RHMinPct  float64 `json:"rhMinPct" validate:"min=0,max=100"`
	RHMaxPct  float64 `json:"rhMaxPct" validate:"min=0,max=100,gtefield=RHMinPct"`
	FillColor string  `json:"fillColor" validate:"required"`
}

// EnthalpyPoint is one plotted sensor state.
type EnthalpyPoint struct {
	Timestamp           time.Time `json:"timestamp"`
	TemperatureC        float64   `json:"temperatureC"`
	RelativeHumidityPct float64   `json:"relativeHumidityPct"`
	EnthalpyKJPerKg     float64   `json:"enthalpyKJPerKg"`
	DewPointC           float64   `json:"dewPointC"`
	Text                string    `json:"text"`
}

// Trace is the plotted series of one sensor.
type Trace struct {
	Name   string          `json:"name"`
	Color  string          `json:"color"`
	Points []EnthalpyPoint `json:"points"`
}

// CurvePoint is one (temperature, enthalpy) vertex of a reference curve.
type CurvePoint struct {
	TemperatureC    float64 `json:"temperatureC"`
	EnthalpyKJPerKg float64 `json:"enthalpyKJPerKg"`
}

// Curve is a constant relative humidity line.
type Curve struct {
	Name                string       `json:"name"`
	RelativeHumidityPct float64      `json:"relativeHumidityPct"`
	Points              []CurvePoint `json:"points"`
}

// ZoneRegion is a comfort zone projected into (temperature, enthalpy) space.
type ZoneRegion struct {
	Name      string  `json:"name,omitempty"`
	X0        float64 `json:"x0"`
	X1        float64 `json:"x1"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	FillColor string  `json:"fillColor"`
	// Layer tells renderers to draw the region beneath the traces.
	Layer string `json:"layer"`
}

// Axis describes one axis of the diagram.
type Axis struct {
	Title string `json:"title"`
	Unit  string `json:"unit"`
}

// Axes holds the axis metadata.
type Axes struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Window is the history interval a diagram covers.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewWindow returns the window of length d ending at end.
func NewWindow(end time.Time, d time.Duration) Window {
	return Window{From: end.Add(-d), To: end}
}

// SensorReport summarizes what happened to one sensor during a refresh.
type SensorReport struct {
	Sensor        string         `json:"sensor"`
	Points        int            `json:"points"`
	Rejected      int            `json:"rejected"`
	RejectReasons map[string]int `json:"rejectReasons,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Diagram is the renderer-neutral description handed to chart renderers.
type Diagram struct {
	ID          string         `json:"id"`
	AssembledAt time.Time      `json:"assembledAt"`
	Window      Window         `json:"window"`
	PressureKPa float64        `json:"pressureKPa"`
	Axes        Axes           `json:"axes"`
	Traces      []Trace        `json:"traces"`
	Curves      []Curve        `json:"curves"`
	Regions     []ZoneRegion   `json:"regions"`
	Reports     []SensorReport `json:"reports"`
}
