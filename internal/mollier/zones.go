package mollier

import (
	"fmt"

	"github.com/i474232898/mollier-diagram/internal/psychro"
)

// LayerBelow asks renderers to draw a region under the data traces.
const LayerBelow = "below"

// ComfortZones projects zone specs into the (temperature, enthalpy) plane.
// The lower edge is the enthalpy at (tMin, rhMin) and the upper edge the
// enthalpy at (tMax, rhMax), so the rectangle only approximates the true
// region. Zones whose corners are out of domain are skipped and reported.
func ComfortZones(specs []ComfortZoneSpec, pressureKPa float64) ([]ZoneRegion, []error) {
	regions := make([]ZoneRegion, 0, len(specs))
	var errs []error
	for i, z := range specs {
		yMin, err := psychro.Enthalpy(z.TMinC, z.RHMinPct, pressureKPa)
		if err != nil {
			errs = append(errs, fmt.Errorf("zone %d (%s) lower corner: %w", i, z.Name, err))
			continue
		}
		yMax, err := psychro.Enthalpy(z.TMaxC, z.RHMaxPct, pressureKPa)
		if err != nil {
			errs = append(errs, fmt.Errorf("zone %d (%s) upper corner: %w", i, z.Name, err))
			continue
		}
		regions = append(regions, ZoneRegion{
			Name:      z.Name,
			X0:        z.TMinC,
			X1:        z.TMaxC,
			Y0:        yMin,
			Y1:        yMax,
			FillColor: z.FillColor,
			Layer:     LayerBelow,
		})
	}
	return regions, errs
}
