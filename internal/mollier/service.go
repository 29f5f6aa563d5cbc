package mollier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/mollier-diagram/internal/observability"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before
// this one finished. The superseded result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// Settings is the resolved configuration of one diagram.
type Settings struct {
	Sensors          []SensorSpec
	Zones            []ComfortZoneSpec
	PressureKPa      float64
	HistoryWindow    time.Duration
	FetchConcurrency int
	Aligner          Aligner
}

// Service orchestrates history fetching, diagram assembly and storage.
type Service struct {
	store    Store
	source   HistorySource
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	generation atomic.Uint64
	mu         sync.Mutex
	cancelPrev context.CancelFunc
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock used to place the history window.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a new Service.
func NewService(store Store, source HistorySource, settings Settings, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	if settings.FetchConcurrency <= 0 {
		settings.FetchConcurrency = 1
	}
	if settings.Aligner == nil {
		settings.Aligner = ExactAligner{}
	}
	s := &Service{
		store:    store,
		source:   source,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches the history of every configured sensor, assembles a new
// diagram and stores it. Per-sensor fetch failures and invalid samples are
// logged and reported inside the diagram; only cancellation or being
// superseded makes Refresh itself fail.
func (s *Service) Refresh(ctx context.Context) (Diagram, error) {
	start := time.Now()
	gen := s.generation.Add(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	s.cancelPrev = cancel
	s.mu.Unlock()

	now := s.clock.Now().UTC()
	id := uuid.NewString()
	logger := s.logger.With("refresh_id", id)
	logger.Debug("refresh started", "sensors", len(s.settings.Sensors), "aligner", s.settings.Aligner.Name())

	snap := s.fetchSnapshot(ctx, logger, NewWindow(now, s.settings.HistoryWindow))

	if s.generation.Load() != gen {
		logger.Info("refresh superseded; discarding result")
		s.metrics.RefreshesTotal.WithLabelValues("superseded").Inc()
		return Diagram{}, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		s.metrics.RefreshesTotal.WithLabelValues("error").Inc()
		return Diagram{}, fmt.Errorf("refresh cancelled: %w", err)
	}

	asm := Assemble(snap, AssembleOptions{
		ID:          id,
		AssembledAt: now,
		PressureKPa: s.settings.PressureKPa,
		Zones:       s.settings.Zones,
		Aligner:     s.settings.Aligner,
	})
	s.record(logger, asm)

	s.store.SaveDiagram(asm.Diagram)
	s.metrics.RefreshesTotal.WithLabelValues("success").Inc()
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	logger.Info("refresh completed",
		"traces", len(asm.Diagram.Traces),
		"regions", len(asm.Diagram.Regions),
		"duration", time.Since(start),
	)
	return asm.Diagram, nil
}

// fetchSnapshot runs the I/O phase: both series of every sensor are fetched
// with bounded concurrency and all fetches finish before it returns.
func (s *Service) fetchSnapshot(ctx context.Context, logger *slog.Logger, window Window) Snapshot {
	series := make([]SensorSeries, len(s.settings.Sensors))
	tempErrs := make([]error, len(s.settings.Sensors))
	humErrs := make([]error, len(s.settings.Sensors))

	var g errgroup.Group
	g.SetLimit(s.settings.FetchConcurrency)

	for i, sensor := range s.settings.Sensors {
		i, sensor := i, sensor
		series[i].Sensor = sensor
		g.Go(func() error {
			series[i].Temperature, tempErrs[i] = s.fetch(ctx, sensor.TemperatureEntity, window)
			return nil
		})
		g.Go(func() error {
			series[i].Humidity, humErrs[i] = s.fetch(ctx, sensor.HumidityEntity, window)
			return nil
		})
	}
	_ = g.Wait()

	for i := range series {
		name := series[i].Sensor.Name
		if tempErrs[i] != nil {
			s.metrics.HistoryFetchErrors.WithLabelValues(name, "temperature").Inc()
			logger.Warn("temperature history fetch failed", "sensor", name, "entity", series[i].Sensor.TemperatureEntity, "error", tempErrs[i])
		}
		if humErrs[i] != nil {
			s.metrics.HistoryFetchErrors.WithLabelValues(name, "humidity").Inc()
			logger.Warn("humidity history fetch failed", "sensor", name, "entity", series[i].Sensor.HumidityEntity, "error", humErrs[i])
		}
		series[i].Err = errors.Join(tempErrs[i], humErrs[i])
	}

	return Snapshot{Window: window, Series: series}
}

func (s *Service) fetch(ctx context.Context, entityID string, window Window) ([]Reading, error) {
	start := time.Now()
	defer func() {
		s.metrics.HistoryRequestDuration.WithLabelValues(s.source.Name()).Observe(time.Since(start).Seconds())
	}()
	readings, err := s.source.History(ctx, entityID, window)
	if err != nil {
		return nil, fmt.Errorf("%s history for %s: %w", s.source.Name(), entityID, err)
	}
	return readings, nil
}

func (s *Service) record(logger *slog.Logger, asm Assembly) {
	for _, report := range asm.Diagram.Reports {
		s.metrics.TracePoints.WithLabelValues(report.Sensor).Set(float64(report.Points))
		for reason, n := range report.RejectReasons {
			s.metrics.SamplesRejected.WithLabelValues(reason).Add(float64(n))
		}
		for _, w := range report.Warnings {
			logger.Warn("sensor history incomplete", "sensor", report.Sensor, "warning", w)
		}
		if report.Rejected > 0 {
			logger.Warn("samples rejected", "sensor", report.Sensor, "rejected", report.Rejected, "reasons", report.RejectReasons)
		}
	}
	for sensor, rejected := range asm.Rejections {
		for _, r := range rejected {
			logger.Debug("sample rejected",
				"sensor", sensor,
				"timestamp", r.Sample.Timestamp,
				"temperature_c", r.Sample.TemperatureC,
				"humidity_pct", r.Sample.RelativeHumidityPct,
				"error", r.Err,
			)
		}
	}
	for _, err := range asm.ZoneErrors {
		s.metrics.ZoneErrors.Inc()
		logger.Warn("comfort zone skipped", "error", err)
	}
}

// Latest delegates to the underlying store.
func (s *Service) Latest() (Diagram, error) {
	return s.store.GetLatest()
}

// Range delegates to the underlying store.
func (s *Service) Range(from, to time.Time) ([]Diagram, error) {
	return s.store.GetRange(from, to)
}

// PressureKPa returns the configured atmospheric pressure.
func (s *Service) PressureKPa() float64 {
	return s.settings.PressureKPa
}
