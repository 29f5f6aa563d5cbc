package mollier

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Aligner pairs two independently sampled series into Samples. The output
// follows the order of the temperature series.
type Aligner interface {
	Name() string
	Align(temperature, humidity []Reading) []Sample
}

// ExactAligner pairs readings only when their timestamps are identical.
// Temperature readings without a humidity reading at the same instant are
// dropped. When several humidity readings share a timestamp the first wins.
type ExactAligner struct{}

func (ExactAligner) Name() string { return "exact" }

func (ExactAligner) Align(temperature, humidity []Reading) []Sample {
	if len(temperature) == 0 || len(humidity) == 0 {
		return nil
	}
	byTime := make(map[int64]float64, len(humidity))
	for _, h := range humidity {
		key := h.Timestamp.UnixNano()
		if _, seen := byTime[key]; !seen {
			byTime[key] = h.Value
		}
	}
	out := make([]Sample, 0, len(temperature))
	for _, t := range temperature {
		rh, ok := byTime[t.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		out = append(out, Sample{Timestamp: t.Timestamp, TemperatureC: t.Value, RelativeHumidityPct: rh})
	}
	return out
}

// NearestAligner pairs each temperature reading with the closest humidity
// reading no further than Tolerance away.
type NearestAligner struct {
	Tolerance time.Duration
}

func (NearestAligner) Name() string { return "nearest" }

func (a NearestAligner) Align(temperature, humidity []Reading) []Sample {
	if len(temperature) == 0 || len(humidity) == 0 {
		return nil
	}
	sorted := sortedByTime(humidity)
	out := make([]Sample, 0, len(temperature))
	for _, t := range temperature {
		h := a.find(sorted, t.Timestamp)
		if h == nil {
			continue
		}
		out = append(out, Sample{Timestamp: t.Timestamp, TemperatureC: t.Value, RelativeHumidityPct: h.Value})
	}
	return out
}

// find does a binary search for the first reading at or after target and
// compares it with its predecessor. readings must be sorted by time.
func (a NearestAligner) find(readings []Reading, target time.Time) *Reading {
	idx := sort.Search(len(readings), func(i int) bool {
		return !readings[i].Timestamp.Before(target)
	})

	var best *Reading
	minDiff := a.Tolerance + 1
	for _, i := range []int{idx - 1, idx} {
		if i < 0 || i >= len(readings) {
			continue
		}
		diff := absDuration(readings[i].Timestamp.Sub(target))
		if diff <= a.Tolerance && diff < minDiff {
			best = &readings[i]
			minDiff = diff
		}
	}
	return best
}

// LinearAligner interpolates humidity at each temperature timestamp from the
// two bracketing humidity readings, provided they are at most MaxGap apart.
// Timestamps outside the humidity series are dropped.
type LinearAligner struct {
	MaxGap time.Duration
}

func (LinearAligner) Name() string { return "linear" }

func (a LinearAligner) Align(temperature, humidity []Reading) []Sample {
	if len(temperature) == 0 || len(humidity) == 0 {
		return nil
	}
	sorted := sortedByTime(humidity)
	out := make([]Sample, 0, len(temperature))
	for _, t := range temperature {
		rh, ok := a.interpolate(sorted, t.Timestamp)
		if !ok {
			continue
		}
		out = append(out, Sample{Timestamp: t.Timestamp, TemperatureC: t.Value, RelativeHumidityPct: rh})
	}
	return out
}

func (a LinearAligner) interpolate(readings []Reading, target time.Time) (float64, bool) {
	idx := sort.Search(len(readings), func(i int) bool {
		return !readings[i].Timestamp.Before(target)
	})
	if idx < len(readings) && readings[idx].Timestamp.Equal(target) {
		return readings[idx].Value, true
	}
	if idx == 0 || idx == len(readings) {
		return 0, false
	}
	prev, next := readings[idx-1], readings[idx]
	span := next.Timestamp.Sub(prev.Timestamp)
	if span > a.MaxGap {
		return 0, false
	}
	frac := float64(target.Sub(prev.Timestamp)) / float64(span)
	return prev.Value + frac*(next.Value-prev.Value), true
}

// ParseAligner resolves an alignment policy name. tolerance is the matching
// tolerance for "nearest" and the maximum bracketing gap for "linear".
func ParseAligner(name string, tolerance time.Duration) (Aligner, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return ExactAligner{}, nil
	case "nearest":
		return NearestAligner{Tolerance: tolerance}, nil
	case "linear":
		return LinearAligner{MaxGap: tolerance}, nil
	default:
		return nil, fmt.Errorf("unknown alignment policy %q (allowed: exact, nearest, linear)", name)
	}
}

func sortedByTime(readings []Reading) []Reading {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
