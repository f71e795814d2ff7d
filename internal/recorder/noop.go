package recorder

import (
	"context"

	"StockScanner/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ context.Context, _ *model.ScanResult) error { return nil }
func (n *NoopRecorder) RecentScans(_ context.Context, _ int) ([]ScanRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
