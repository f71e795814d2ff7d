package scheduler

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"StockScanner/internal/model"
)

func newTestScheduler(t *testing.T, sink *captureSink) *Scheduler {
	t.Helper()
	s := newTestScanner(t, testProvider(), []*captureSink{sink}, nil, nil)
	defaults := model.ScanRequest{
		Universe:     []string{"ZZZ", "UP", "AAA"},
		Resolution:   model.ResolutionDaily,
		LookbackDays: 100,
		Tier:         model.TierUltimate,
	}
	return NewScheduler(context.Background(), s, defaults, zaptest.NewLogger(t))
}

func TestHandleCommand_Scan(t *testing.T) {
	sink := &captureSink{name: "capture"}
	s := newTestScheduler(t, sink)

	if reply := s.HandleCommand(context.Background(), "/scan"); reply != "" {
		t.Errorf("reply = %q, want none", reply)
	}
	if reply := s.HandleCommand(context.Background(), "/scan@ScannerBot basic"); reply != "" {
		t.Errorf("reply = %q, want none", reply)
	}
	if len(sink.results) != 2 {
		t.Fatalf("delivered %d results, want 2", len(sink.results))
	}
	if sink.results[0].Tier != model.TierUltimate || sink.results[1].Tier != model.TierBasic {
		t.Errorf("tiers = %s, %s", sink.results[0].Tier, sink.results[1].Tier)
	}
	if len(sink.results[1].Matches) != 3 {
		t.Errorf("basic matches = %v", sink.results[1].Matches)
	}
}

func TestHandleCommand_BadTier(t *testing.T) {
	sink := &captureSink{name: "capture"}
	s := newTestScheduler(t, sink)
	reply := s.HandleCommand(context.Background(), "/scan mega")
	if !strings.Contains(reply, `unknown scan tier "mega"`) || !strings.Contains(reply, "/history") {
		t.Errorf("reply = %q", reply)
	}
	if len(sink.results) != 0 {
		t.Error("no scan should run")
	}
}

func TestHandleCommand_ScanFailure(t *testing.T) {
	s := newTestScheduler(t, &captureSink{name: "capture"})
	s.Defaults.Universe = nil
	if reply := s.HandleCommand(context.Background(), "/scan"); !strings.Contains(reply, "Ultimate scan failed") {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleCommand_HistoryAndHelp(t *testing.T) {
	s := newTestScheduler(t, &captureSink{name: "capture"})
	if reply := s.HandleCommand(context.Background(), "/history"); reply != "No scans recorded yet." {
		t.Errorf("history with noop recorder = %q", reply)
	}
	for _, cmd := range []string{"/help", "", "hello"} {
		if reply := s.HandleCommand(context.Background(), cmd); !strings.Contains(reply, "/scan [tier]") {
			t.Errorf("%q: reply = %q", cmd, reply)
		}
	}
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(t, &captureSink{name: "capture"})
	if err := s.RegisterAll("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	// Five fields lack the seconds column the scheduler expects.
	if err := s.RegisterAll("30 16 * * 1-5"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRunNow(t *testing.T) {
	sink := &captureSink{name: "capture"}
	s := newTestScheduler(t, sink)
	res, err := s.RunNow()
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != model.TierUltimate || len(sink.results) != 1 {
		t.Errorf("tier=%s delivered=%d", res.Tier, len(sink.results))
	}
}
