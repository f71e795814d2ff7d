package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"StockScanner/internal/collector"
	"StockScanner/internal/config"
	"StockScanner/internal/logger"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
	"StockScanner/internal/notifier"
	"StockScanner/internal/recorder"
	"StockScanner/internal/scheduler"
	"StockScanner/internal/watchlist"
)

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "path to the YAML config")
	envPath := flag.String("env", ".env", "optional dotenv file")
	once := flag.Bool("once", false, "run a single scan and exit")
	tierFlag := flag.String("tier", "", "scan tier override (basic, belowZero, combo, ultimate)")
	watchlistFlag := flag.String("watchlist", "", "TradingView watchlist export to scan")
	testAlerts := flag.Bool("test-alerts", false, "send a test message to the Discord webhook and exit")
	flag.Parse()

	if err := run(*cfgPath, *envPath, *once, *tierFlag, *watchlistFlag, *testAlerts); err != nil {
		fmt.Fprintf(os.Stderr, "stock scanner: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(cfgPath, envPath string, once bool, tierFlag, watchlistFlag string, testAlerts bool) error {
	cfg, err := config.Load(cfgPath, envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if tierFlag != "" {
		cfg.Scan.Tier = tierFlag
	}
	if watchlistFlag != "" {
		cfg.Scan.WatchlistFile = watchlistFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("stock scanner starting", zap.String("config", cfgPath))

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sinks
	var sinks []notifier.Sink
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sinks = append(sinks, tn)
	}
	var dn *notifier.DiscordNotifier
	if cfg.Discord.WebhookURL != "" {
		dn = notifier.NewDiscordNotifier(cfg.Discord.WebhookURL, cfg.Proxy, log)
		sinks = append(sinks, dn)
	}
	if testAlerts {
		if dn == nil {
			return fmt.Errorf("discord.webhook_url is not configured")
		}
		if err := dn.Test(ctx); err != nil {
			return fmt.Errorf("discord test alert: %w", err)
		}
		log.Info("discord test alert sent")
		return nil
	}
	if len(sinks) == 0 {
		log.Warn("no notification sink configured; results are only logged and recorded")
	}

	universe, err := watchlist.Resolve(cfg.Scan.WatchlistFile, cfg.Scan.Watchlist)
	if err != nil {
		return fmt.Errorf("resolve watchlist: %w", err)
	}
	tier, _ := model.ParseTier(cfg.Scan.Tier)
	resolution, _ := model.ParseResolution(cfg.Scan.Resolution)
	defaults := model.ScanRequest{
		Universe:     universe,
		Resolution:   resolution,
		LookbackDays: cfg.Scan.LookbackDays,
		Tier:         tier,
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Port > 0 && !once {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port, reg); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		log.Info("metrics listening", zap.Int("port", cfg.Metrics.Port))
	}

	// Data provider
	provider, err := collector.NewProvider(cfg.DataSource.Provider, cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	if err != nil {
		return err
	}
	col := collector.NewCollector(provider, cfg.BatchOptions(), log, m)
	log.Info("data source",
		zap.String("provider", provider.Name()),
		zap.Int("batch_size", cfg.DataSource.BatchSize),
		zap.Int("universe", len(universe)))

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	scanner := scheduler.NewScanner(col, sinks, rec, m, log)

	if once {
		res, err := scanner.RunScan(ctx, defaults)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Println(notifier.Summary(res))
		if len(res.Matches) > 0 {
			fmt.Println(notifier.ListSymbols(res.Matches))
		}
		return nil
	}

	sched := scheduler.NewScheduler(ctx, scanner, defaults, log)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, scanning now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Error("startup scan failed", zap.Error(err))
			}
		}()
	}

	log.Info("stock scanner is running, press Ctrl+C to stop", zap.String("cron", cfg.Schedule.ScanCron))
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}
