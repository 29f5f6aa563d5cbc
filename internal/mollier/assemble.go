package mollier

import (
	"time"

	"github.com/i474232898/mollier-diagram/internal/psychro"
)

// SensorSeries is the fetched history of one sensor. Err is set when either
// fetch failed; the series are then ignored.
type SensorSeries struct {
	Sensor      SensorSpec
	Temperature []Reading
	Humidity    []Reading
	Err         error
}

// Snapshot is the fully resolved input of one refresh.
type Snapshot struct {
	Window Window
	Series []SensorSeries
}

// AssembleOptions carries everything besides the fetched data.
type AssembleOptions struct {
	ID          string
	AssembledAt time.Time
	PressureKPa float64
	Zones       []ComfortZoneSpec
	Aligner     Aligner
}

// Warnings attached to a sensor report when a fetch succeeded but returned
// nothing, typically a wrong entity ID or a window with no recorded states.
const (
	WarnTemperatureEmpty = "temperature history is empty"
	WarnHumidityEmpty    = "humidity history is empty"
)

// Assembly is the diagram plus the per-sample and per-zone failures met while
// building it.
type Assembly struct {
	Diagram    Diagram
	Rejections map[string][]Rejection
	ZoneErrors []error
}

// Assemble builds the diagram from a snapshot. It performs no I/O and never
// fails as a whole: broken samples, sensors and zones are reported and left
// out.
func Assemble(snap Snapshot, opts AssembleOptions) Assembly {
	aligner := opts.Aligner
	if aligner == nil {
		aligner = ExactAligner{}
	}

	regions, zoneErrs := ComfortZones(opts.Zones, opts.PressureKPa)

	d := Diagram{
		ID:          opts.ID,
		AssembledAt: opts.AssembledAt,
		Window:      snap.Window,
		PressureKPa: opts.PressureKPa,
		Axes: Axes{
			X: Axis{Title: AxisTemperature, Unit: UnitTemperature},
			Y: Axis{Title: AxisEnthalpy, Unit: UnitEnthalpy},
		},
		Traces:  make([]Trace, 0, len(snap.Series)),
		Curves:  ReferenceCurves(opts.PressureKPa),
		Regions: regions,
		Reports: make([]SensorReport, 0, len(snap.Series)),
	}
	rejections := make(map[string][]Rejection)

	for _, s := range snap.Series {
		report := SensorReport{Sensor: s.Sensor.Name}
		if s.Err != nil {
			report.Error = s.Err.Error()
			d.Traces = append(d.Traces, Trace{Name: s.Sensor.Name, Color: s.Sensor.Color, Points: []EnthalpyPoint{}})
			d.Reports = append(d.Reports, report)
			continue
		}

		if len(s.Temperature) == 0 {
			report.Warnings = append(report.Warnings, WarnTemperatureEmpty)
		}
		if len(s.Humidity) == 0 {
			report.Warnings = append(report.Warnings, WarnHumidityEmpty)
		}

		samples := aligner.Align(s.Temperature, s.Humidity)
		trace, rejected := BuildTrace(s.Sensor, samples, opts.PressureKPa)
		d.Traces = append(d.Traces, trace)

		report.Points = len(trace.Points)
		report.Rejected = len(rejected)
		if len(rejected) > 0 {
			report.RejectReasons = make(map[string]int)
			for _, r := range rejected {
				report.RejectReasons[psychro.Reason(r.Err)]++
			}
			rejections[s.Sensor.Name] = append(rejections[s.Sensor.Name], rejected...)
		}
		d.Reports = append(d.Reports, report)
	}

	return Assembly{Diagram: d, Rejections: rejections, ZoneErrors: zoneErrs}
}
