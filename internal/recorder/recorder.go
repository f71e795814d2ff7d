package recorder

import (
	"context"
	"time"

	"StockScanner/internal/model"
)

// ScanRecord is one persisted scan run.
type ScanRecord struct {
	RunID        string
	Tier         model.Tier
	Resolution   model.Resolution
	StartedAt    time.Time
	Duration     time.Duration
	UniverseSize int
	TotalScanned int
	FailedCount  int
	Insufficient int
	Matches      []string // universe order
}

// FromResult converts a finished scan into its persisted form.
func FromResult(r *model.ScanResult) ScanRecord {
	return ScanRecord{
		RunID:        r.RunID,
		Tier:         r.Tier,
		Resolution:   r.Resolution,
		StartedAt:    r.StartedAt,
		Duration:     r.Duration,
		UniverseSize: r.UniverseSize,
		TotalScanned: r.TotalScanned,
		FailedCount:  len(r.Failed),
		Insufficient: r.InsufficientCount(),
		Matches:      append([]string(nil), r.Matches...),
	}
}

// Recorder persists scan history.
type Recorder interface {
	RecordScan(ctx context.Context, r *model.ScanResult) error
	// RecentScans returns up to limit runs, newest first.
	RecentScans(ctx context.Context, limit int) ([]ScanRecord, error)
	Close() error
}
