package mollier

import (
	"context"
	"time"
)

// HistorySource abstracts a time-series backend (e.g. Home Assistant, a
// local SQLite reading log).
type HistorySource interface {
	Name() string
	// History returns the readings of entityID inside window, oldest first.
	History(ctx context.Context, entityID string, window Window) ([]Reading, error)
}

// Store is the contract the in-memory diagram store satisfies.
type Store interface {
	SaveDiagram(d Diagram)
	GetLatest() (Diagram, error)
	GetRange(from, to time.Time) ([]Diagram, error)
}
