package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockScanner/internal/collector"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
	"StockScanner/internal/notifier"
	"StockScanner/internal/recorder"
	"StockScanner/internal/strategy"
)

var (
	ErrScanInProgress = errors.New("a scan is already running")
	ErrEmptyUniverse  = errors.New("scan universe is empty")
)

// Scanner runs one scan end to end: fetch, evaluate, deliver, record.
type Scanner struct {
	collector *collector.Collector
	sinks     []notifier.Sink
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	log       *zap.Logger

	running sync.Mutex
	now     func() time.Time
}

// NewScanner wires a Scanner. rec, m and log may be nil.
func NewScanner(col *collector.Collector, sinks []notifier.Sink, rec recorder.Recorder, m *metrics.Metrics, log *zap.Logger) *Scanner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		collector: col,
		sinks:     sinks,
		recorder:  rec,
		metrics:   m,
		log:       log.Named("scanner"),
		now:       time.Now,
	}
}

// RunScan executes req. Provider misconfiguration and cancellation abort the
// scan; a failing sink or recorder is logged and does not.
func (s *Scanner) RunScan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	if !s.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.running.Unlock()

	tier, err := model.ParseTier(string(req.Tier))
	if err != nil {
		return nil, err
	}
	req.Tier = tier
	if len(req.Universe) == 0 {
		return nil, ErrEmptyUniverse
	}
	if req.Resolution == "" {
		req.Resolution = model.ResolutionDaily
	}
	if req.LookbackDays <= 0 {
		req.LookbackDays = 100
	}

	result := &model.ScanResult{
		RunID:        uuid.NewString(),
		Tier:         req.Tier,
		Resolution:   req.Resolution,
		UniverseSize: len(req.Universe),
		StartedAt:    s.now(),
	}
	log := s.log.With(zap.String("run_id", result.RunID), zap.String("tier", string(req.Tier)))
	log.Info("scan started", zap.Int("universe", len(req.Universe)))

	col, err := s.collector.Collect(ctx, req.Universe, req.Resolution, req.LookbackDays)
	if err != nil {
		log.Error("scan aborted", zap.Error(err))
		return nil, fmt.Errorf("collect: %w", err)
	}

	result.Outcomes = strategy.EvaluateAll(req.Tier, col.Series)
	result.Matches = strategy.Matches(result.Outcomes)
	result.TotalScanned = len(col.Series)
	result.Failed = col.Failed
	result.Duration = s.now().Sub(result.StartedAt)

	log.Info("scan finished",
		zap.Int("matches", len(result.Matches)),
		zap.Int("scanned", result.TotalScanned),
		zap.Int("failed", len(result.Failed)),
		zap.Int("insufficient", result.InsufficientCount()),
		zap.Duration("took", result.Duration))
	s.metrics.ObserveScan(string(req.Tier), result.Duration, len(result.Matches), result.TotalScanned)

	for _, sink := range s.sinks {
		err := sink.Deliver(ctx, result)
		s.metrics.ObserveDelivery(sink.Name(), err)
		if err != nil {
			log.Error("deliver failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
	if err := s.recorder.RecordScan(ctx, result); err != nil {
		log.Error("record scan", zap.Error(err))
	}
	return result, nil
}

// History returns up to limit recorded scans, newest first.
func (s *Scanner) History(ctx context.Context, limit int) ([]recorder.ScanRecord, error) {
	return s.recorder.RecentScans(ctx, limit)
}
