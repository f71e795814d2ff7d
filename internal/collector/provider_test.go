package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockScanner/internal/model"
)

func TestYahooRange(t *testing.T) {
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		days int
		want string
	}{
		{7, "5d"}, {8, "1mo"}, {30, "1mo"}, {90, "3mo"}, {100, "6mo"},
		{180, "6mo"}, {365, "1y"}, {730, "2y"}, {731, "5y"},
	}
	for _, tt := range tests {
		if got := yahooRange(to.AddDate(0, 0, -tt.days), to); got != tt.want {
			t.Errorf("%d days: got %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestYahooProvider_FetchSeries(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1700086400,1700000000,1700172800],
			"indicators":{"quote":[{"open":[2,1,null],"high":[2.5,1.5,null],"low":[1.5,0.5,null],
			"close":[2.2,1.1,null],"volume":[20,10,null]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "")
	to := time.Now()
	s, err := p.FetchSeries(context.Background(), "SPX", model.ResolutionWeekly, to.AddDate(0, 0, -100), to)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if gotPath != "/chart/^GSPC" {
		t.Errorf("path = %s", gotPath)
	}
	if !strings.Contains(gotQuery, "interval=1wk") || !strings.Contains(gotQuery, "range=6mo") {
		t.Errorf("query = %s", gotQuery)
	}
	if s.Symbol != "SPX" || s.Len() != 2 {
		t.Fatalf("symbol=%s len=%d", s.Symbol, s.Len())
	}
	// null bar dropped, remaining bars sorted ascending
	if s.Bars[0].Close != 1.1 || s.Bars[1].Close != 2.2 {
		t.Errorf("closes = %v", s.Closes())
	}
}

func TestYahooProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		noData  bool
		wantSub string
	}{
		{"http status", http.StatusTooManyRequests, "slow down", false, "status 429"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, false, "delisted"},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewYahooProvider(srv.URL, "").FetchSeries(context.Background(), "XYZ", model.ResolutionDaily, time.Now().AddDate(0, 0, -10), time.Now())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.noData && !errors.Is(err, ErrNoData) {
				t.Errorf("err = %v, want ErrNoData", err)
			}
			if tt.wantSub != "" && !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %v, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestFinnhubProvider_FetchSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/stock/candle" || q.Get("token") != "k" || q.Get("resolution") != "D" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch q.Get("symbol") {
		case "AAPL":
			w.Write([]byte(`{"s":"ok","t":[1,2],"o":[1,2],"h":[1.5,2.5],"l":[0.5,1.5],"c":[1.2,2.2],"v":[10,20]}`))
		default:
			w.Write([]byte(`{"s":"no_data"}`))
		}
	}))
	defer srv.Close()

	p := NewFinnhubProvider(srv.URL, "k", "")
	from, to := time.Now().AddDate(0, 0, -100), time.Now()

	s, err := p.FetchSeries(context.Background(), "AAPL", model.ResolutionDaily, from, to)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if s.Len() != 2 || s.Bars[1].High != 2.5 || s.Bars[0].Low != 0.5 || s.Bars[1].Close != 2.2 {
		t.Errorf("unexpected bars: %+v", s.Bars)
	}

	if _, err := p.FetchSeries(context.Background(), "NOPE", model.ResolutionDaily, from, to); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFinnhubProvider_MissingKey(t *testing.T) {
	p := NewFinnhubProvider("http://127.0.0.1:0", "", "")
	if err := Preflight(p); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("Preflight = %v, want ErrAPIKeyMissing", err)
	}
	_, err := p.FetchSeries(context.Background(), "AAPL", model.ResolutionDaily, time.Now(), time.Now())
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("FetchSeries = %v, want ErrAPIKeyMissing", err)
	}
	if err := Preflight(NewYahooProvider("", "")); err != nil {
		t.Errorf("yahoo needs no preflight, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"yahoo", "finnhub"} {
		p, err := NewProvider(name, "", "k", "")
		if err != nil || p.Name() != name {
			t.Errorf("%s: p=%v err=%v", name, p, err)
		}
	}
	if _, err := NewProvider("bloomberg", "", "", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}
