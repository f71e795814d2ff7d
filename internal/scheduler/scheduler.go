package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockScanner/internal/model"
	"StockScanner/internal/notifier"
)

// historyLimit is how many runs /history shows.
const historyLimit = 5

// Scheduler runs the configured scan on a cron schedule and answers bot
// commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *Scanner
	Defaults model.ScanRequest
	Ctx      context.Context

	log *zap.Logger
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are
// skipped.
func NewScheduler(ctx context.Context, scanner *Scanner, defaults model.ScanRequest, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	cronLog := cron.PrintfLogger(zap.NewStdLog(log))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Scanner:  scanner,
		Defaults: defaults,
		Ctx:      ctx,
		log:      log,
	}
}

// RegisterAll registers the periodic scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow executes the default scan immediately.
func (s *Scheduler) RunNow() (*model.ScanResult, error) {
	return s.Scanner.RunScan(s.Ctx, s.Defaults)
}

func (s *Scheduler) scanTask() {
	if _, err := s.RunNow(); err != nil {
		s.log.Error("scheduled scan failed", zap.Error(err))
	}
}

// HandleCommand processes a user command and returns a reply. Successful
// scans are announced by the sinks, so they produce no reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/scan@MyBot combo" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/scan":
		req := s.Defaults
		if len(fields) > 1 {
			tier, err := model.ParseTier(fields[1])
			if err != nil {
				return fmt.Sprintf("❌ %v\n\n%s", err, notifier.FormatHelp())
			}
			req.Tier = tier
		}
		if _, err := s.Scanner.RunScan(ctx, req); err != nil {
			return fmt.Sprintf("❌ %s scan failed: %v", req.Tier.Title(), err)
		}
		return ""
	case "/history":
		runs, err := s.Scanner.History(ctx, historyLimit)
		if err != nil {
			return fmt.Sprintf("❌ load history: %v", err)
		}
		return notifier.FormatHistory(runs)
	default:
		return notifier.FormatHelp()
	}
}
