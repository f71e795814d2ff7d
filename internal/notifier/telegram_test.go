package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"StockScanner/internal/model"
)

func newTestTelegram(t *testing.T, srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zaptest.NewLogger(t))
	n.APIBase = srv.URL
	n.retry = retryPolicy{MaxRetries: 2, Backoff: time.Millisecond}
	return n
}

func TestTelegram_Deliver(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := newTestTelegram(t, srv)
	err := n.Deliver(context.Background(), &model.ScanResult{Tier: model.TierBasic, Matches: []string{"AAPL"}, TotalScanned: 3})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got["chat_id"] != "42" || got["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", got)
	}
	if !strings.Contains(got["text"], "MACD Scan Results") || !strings.Contains(got["text"], "AAPL") {
		t.Errorf("text = %q", got["text"])
	}
}

func TestTelegram_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "flood", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestTelegram(t, srv).SendWithRetry(context.Background(), "hi"); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestTelegram_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestTelegram(t, srv).SendWithRetry(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestTelegram_RetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := newTestTelegram(t, srv)
	n.retry = retryPolicy{MaxRetries: 5, Backoff: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := n.SendWithRetry(ctx, "hi"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTelegram_Polling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		replies []string
		served  int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&served, 1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":"/help","chat":{"id":42}}},
					{"update_id":8,"message":{"text":"/scan","chat":{"id":99}}},
					{"update_id":9}
				]}`))
				return
			}
			if r.URL.Query().Get("offset") != "10" {
				t.Errorf("offset = %s, want 10", r.URL.Query().Get("offset"))
			}
			cancel()
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case "/botTOKEN/sendMessage":
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			mu.Lock()
			replies = append(replies, p["text"])
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	var commands []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestTelegram(t, srv).StartPolling(ctx, func(_ context.Context, cmd string) string {
			commands = append(commands, cmd)
			return "reply to " + cmd
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	if len(commands) != 1 || commands[0] != "/help" {
		t.Errorf("commands = %v, want only the configured chat's /help", commands)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 || replies[0] != "reply to /help" {
		t.Errorf("replies = %v", replies)
	}
}
