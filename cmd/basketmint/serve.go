package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"BasketMint/internal/api"
	"BasketMint/internal/events"
	"BasketMint/internal/feed"
	"BasketMint/internal/fund"
	"BasketMint/internal/market"
	"BasketMint/internal/metrics"
	"BasketMint/internal/minimum"
	"BasketMint/internal/notifier"
	"BasketMint/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fund engine with its admin API, market feed and notifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("basketmint starting", zap.String("feed", cfg.Feed.Kind), zap.String("addr", cfg.HTTP.Addr))

	store := market.NewStore(nil)
	policy, err := cfg.MinimumPolicy()
	if err != nil {
		return err
	}
	calc, err := minimum.NewCalculator(store, policy)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mc := metrics.NewCollector(reg)
	sinks := events.Multi{mc}

	if cfg.Database.SQLitePath != "" {
		rec, err := events.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, events will not be recorded", zap.Error(err))
		} else {
			defer rec.Close()
			sinks = append(sinks, rec)
		}
	}

	var tn *notifier.TelegramNotifier
	var tgSink *notifier.EventSink
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		tgSink = notifier.NewEventSink(tn, cfg.Telegram.QueueSize, 3, logger)
		sinks = append(sinks, tgSink)
	}

	fs, err := fund.NewFileStore(cfg.State.Dir)
	if err != nil {
		return fmt.Errorf("init fund state: %w", err)
	}
	engine, err := fund.NewEngine(cfg.EngineConfig(), newOracle(cfg), calc,
		fund.WithNotifier(sinks),
		fund.WithPersister(fs),
		fund.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init fund engine: %w", err)
	}
	mc.Seed(engine.Funds())

	src := newSource(cfg)
	logger.Info("market feed", zap.String("source", src.Name()))
	sched := scheduler.NewScheduler(ctx, feed.NewRefresher(src, store, logger), engine, logger)
	if err := sched.RegisterAll(cfg.Feed.Cron, cfg.State.SnapshotCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	if err := sched.RefreshNow(); err != nil {
		logger.Warn("initial market refresh failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tgSink.Run(ctx)
		go tn.StartPolling(ctx, notifier.NewCommandHandler(engine))
		logger.Info("telegram notifications enabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.New(engine, store, reg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("basketmint is running")

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if n, err := engine.Snapshot(); err != nil {
		logger.Error("final snapshot incomplete", zap.Int("saved", n), zap.Error(err))
	}
	logger.Info("basketmint stopped")
	return nil
}
