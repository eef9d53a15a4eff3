package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quorum-trading-bot/internal/eod"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/metrics"
	"quorum-trading-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Metrics.Enabled {
		metrics.Serve(cfg.Metrics.Addr)
		logger.Info(ctx, "Metrics server started", "addr", cfg.Metrics.Addr)
	}

	brk := initializeBroker(ctx, cfg)
	ag := initializeAgents(ctx, cfg)
	eng := initializeEngine(cfg, brk, ag)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"assets", cfg.Assets,
		"epoch_minutes", cfg.EpochMinutes,
		"agents", len(ag),
	)

	for {
		select {
		case <-tick.C:
			for _, asset := range cfg.Assets {
				st, err := eng.Step(ctx, asset)
				if err != nil {
					// InvalidInput or a broker failure; the round is
					// aborted, the loop moves on to the next asset.
					logger.ErrorWithErr(ctx, "Round aborted", err, "asset", asset)
					continue
				}
				if st != nil {
					b, _ := json.Marshal(st)
					fmt.Println(string(b))
				}
			}
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				if p, err := eod.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "EOD CSV written", "path", p)
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			if p, err := eod.SummarizeToday(); err == nil && p != "" {
				logger.Info(ctx, "EOD CSV written", "path", p)
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = trace.Shutdown(shutdownCtx)
			_ = logger.Shutdown(shutdownCtx)
			shutdownCancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
