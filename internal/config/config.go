package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/mollier-diagram/internal/common"
	"github.com/i474232898/mollier-diagram/internal/mollier"
)

const (
	BackendHomeAssistant = "homeassistant"
	BackendSQLite        = "sqlite"

	// Accepted atmospheric pressure, in kPa. Anything outside is almost
	// certainly a value given in hPa or Pa.
	MinPressureKPa = 30.0
	MaxPressureKPa = 120.0

	defaultSensors      = "Sensor 1|sensor.temperature|sensor.humidity|red"
	defaultComfortZones = "Comfort|20|25|40|60|rgba(0,255,0,0.2)"
)

// ErrInvalidPressureUnit is returned when PRESSURE_KPA is outside the range of
// plausible atmospheric pressures expressed in kPa.
var ErrInvalidPressureUnit = errors.New("pressure must be given in kPa")

type AppConfig struct {
	Port      string     `validate:"required,numeric"`
	LogLevel  slog.Level `validate:"-"`
	LogFormat string     `validate:"oneof=text json"`

	// History source selection.
	HistoryBackend string        `validate:"oneof=homeassistant sqlite"`
	HABaseURL      string        `validate:"required,url"`
	HAToken        string        `validate:"required_if=HistoryBackend homeassistant"`
	SQLitePath     string        `validate:"required_if=HistoryBackend sqlite"`
	HTTPTimeout    time.Duration `validate:"gt=0s"`

	// Refresh cycle.
	RefreshInterval    time.Duration `validate:"gt=0s"`
	HistoryWindow      time.Duration `validate:"gt=0s"`
	FetchConcurrency   int           `validate:"min=1,max=64"`
	Alignment          string        `validate:"oneof=exact nearest linear"`
	AlignmentTolerance time.Duration `validate:"gte=0s"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"`  // max number of diagrams (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0s"` // max diagram age (0 = unlimited)

	PressureKPa float64
	Sensors     []mollier.SensorSpec      `validate:"unique=Name,dive"` // names key reports and metrics
	Zones       []mollier.ComfortZoneSpec `validate:"dive"`
}

var validate = validator.New()

// Load reads configuration from a .env file (if present) and the environment
// with sensible defaults, then validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv builds and validates the configuration from the environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           getenvDefault("PORT", "8080"),
		LogFormat:      strings.ToLower(getenvDefault("LOG_FORMAT", "text")),
		HistoryBackend: strings.ToLower(getenvDefault("HISTORY_BACKEND", BackendHomeAssistant)),
		HABaseURL:      getenvDefault("HA_BASE_URL", "http://localhost:8123"),
		HAToken:        os.Getenv("HA_TOKEN"),
		SQLitePath:     getenvDefault("SQLITE_PATH", "mollier.db"),
		Alignment:      strings.ToLower(getenvDefault("ALIGNMENT", "exact")),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getenvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"REFRESH_INTERVAL", "5m", &cfg.RefreshInterval},
		{"HISTORY_WINDOW", "24h", &cfg.HistoryWindow},
		{"ALIGNMENT_TOLERANCE", "30s", &cfg.AlignmentTolerance},
		{"STORE_MAX_AGE", "24h", &cfg.StoreMaxAge},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(getenvDefault(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if cfg.FetchConcurrency, err = getenvInt("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 12); err != nil {
		return nil, err
	}

	pressure, err := strconv.ParseFloat(getenvDefault("PRESSURE_KPA", "101.325"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PRESSURE_KPA: %w", err)
	}
	if err := CheckPressureKPa(pressure); err != nil {
		return nil, fmt.Errorf("invalid PRESSURE_KPA: %w", err)
	}
	cfg.PressureKPa = pressure

	if cfg.Sensors, err = ParseSensors(getenvList("SENSORS", defaultSensors)); err != nil {
		return nil, fmt.Errorf("invalid SENSORS: %w", err)
	}
	if cfg.Zones, err = ParseComfortZones(getenvList("COMFORT_ZONES", defaultComfortZones)); err != nil {
		return nil, fmt.Errorf("invalid COMFORT_ZONES: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Settings converts the configuration into the diagram service settings.
func (c *AppConfig) Settings() (mollier.Settings, error) {
	aligner, err := mollier.ParseAligner(c.Alignment, c.AlignmentTolerance)
	if err != nil {
		return mollier.Settings{}, err
	}
	return mollier.Settings{
		Sensors:          c.Sensors,
		Zones:            c.Zones,
		PressureKPa:      c.PressureKPa,
		HistoryWindow:    c.HistoryWindow,
		FetchConcurrency: c.FetchConcurrency,
		Aligner:          aligner,
	}, nil
}

// CheckPressureKPa rejects pressures that are not plausible atmospheric
// pressures in kPa, naming the likely unit mix-up.
func CheckPressureKPa(p float64) error {
	switch {
	case p >= MinPressureKPa && p <= MaxPressureKPa:
		return nil
	case p >= MinPressureKPa*10 && p <= MaxPressureKPa*10:
		return fmt.Errorf("%w: %g looks like hPa (expected %g..%g kPa)", ErrInvalidPressureUnit, p, MinPressureKPa, MaxPressureKPa)
	case p >= MinPressureKPa*1000 && p <= MaxPressureKPa*1000:
		return fmt.Errorf("%w: %g looks like Pa (expected %g..%g kPa)", ErrInvalidPressureUnit, p, MinPressureKPa, MaxPressureKPa)
	default:
		return fmt.Errorf("%w: %g is outside %g..%g kPa", ErrInvalidPressureUnit, p, MinPressureKPa, MaxPressureKPa)
	}
}

// ParseSensors parses "name|temperature_entity|humidity_entity|color"
// entries separated by ";".
func ParseSensors(s string) ([]mollier.SensorSpec, error) {
	sensors := []mollier.SensorSpec{}
	for i, entry := range common.SplitTrim(s, ";") {
		f := common.Fields(entry, "|")
		if len(f) != 4 {
			return nil, fmt.Errorf("sensor %d: expected 4 fields separated by '|', got %d", i+1, len(f))
		}
		sensors = append(sensors, mollier.SensorSpec{
			Name:              f[0],
			TemperatureEntity: f[1],
			HumidityEntity:    f[2],
			Color:             f[3],
		})
	}
	return sensors, nil
}

// ParseComfortZones parses "name|t_min|t_max|rh_min|rh_max|color" entries
// separated by ";". Temperatures are in °C, humidities in %.
func ParseComfortZones(s string) ([]mollier.ComfortZoneSpec, error) {
	zones := []mollier.ComfortZoneSpec{}
	for i, entry := range common.SplitTrim(s, ";") {
		f := common.Fields(entry, "|")
		if len(f) != 6 {
			return nil, fmt.Errorf("zone %d: expected 6 fields separated by '|', got %d", i+1, len(f))
		}
		var bounds [4]float64
		for j := range bounds {
			v, err := strconv.ParseFloat(f[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("zone %d (%s): %w", i+1, f[0], err)
			}
			bounds[j] = v
		}
		zones = append(zones, mollier.ComfortZoneSpec{
			Name:      f[0],
			TMinC:     bounds[0],
			TMaxC:     bounds[1],
			RHMinPct:  bounds[2],
			RHMaxPct:  bounds[3],
			FillColor: f[5],
		})
	}
	return zones, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvList distinguishes an unset variable (default applies) from one set
// to the empty string (empty list).
func getenvList(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
