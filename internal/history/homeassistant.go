package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

// HomeAssistantSource reads sensor history from the Home Assistant REST API.
type HomeAssistantSource struct {
	baseURL string
	token   string
	cfg     HTTPClientConfig
	cb      *gobreaker.CircuitBreaker
}

// NewHomeAssistantSource creates a new Home Assistant history source.
func NewHomeAssistantSource(baseURL, token string, cfg HTTPClientConfig) *HomeAssistantSource {
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff
	}
	return &HomeAssistantSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		cfg:     cfg,
		cb:      newBreaker("homeassistant"),
	}
}

// Name implements mollier.HistorySource.
func (s *HomeAssistantSource) Name() string { return "homeassistant" }

type haState struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastUpdated string `json:"last_updated"`
}

// History implements mollier.HistorySource.
func (s *HomeAssistantSource) History(ctx context.Context, entityID string, window mollier.Window) ([]mollier.Reading, error) {
	endpoint := fmt.Sprintf("%s/api/history/period/%s", s.baseURL, url.PathEscape(window.From.UTC().Format(time.RFC3339)))
	q := url.Values{}
	q.Set("filter_entity_id", entityID)
	q.Set("end_time", window.To.UTC().Format(time.RFC3339))
	q.Set("no_attributes", "")
	fullURL := endpoint + "?" + q.Encode()

	resp, err := doRequest(ctx, s.cfg, s.cb, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload [][]haState
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	if len(payload) == 0 {
		return []mollier.Reading{}, nil
	}

	readings := make([]mollier.Reading, 0, len(payload[0]))
	for _, st := range payload[0] {
		r, ok := parseState(st)
		if !ok {
			continue
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// parseState converts one state change. States such as "unavailable" or
// "unknown" are not readings.
func parseState(st haState) (mollier.Reading, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(st.State), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return mollier.Reading{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, st.LastUpdated)
	if err != nil {
		return mollier.Reading{}, false
	}
	return mollier.Reading{Timestamp: ts, Value: v}, true
}
