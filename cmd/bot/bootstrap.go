package main

import (
	"context"
	"fmt"
	"os"

	"quorum-trading-bot/internal/agents"
	"quorum-trading-bot/internal/agents/agentobs"
	"quorum-trading-bot/internal/broker"
	"quorum-trading-bot/internal/broker/brokerobs"
	"quorum-trading-bot/internal/engine"
	"quorum-trading-bot/internal/engine/engineobs"
	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/trace"
	"quorum-trading-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeBroker initializes and returns the broker with observability
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := broker.New(broker.Params{
		Mode:       cfg.Mode,
		GammaURL:   cfg.Broker.GammaURL,
		DataAPIURL: cfg.Broker.DataAPIURL,
		ClobURL:    cfg.Broker.ClobURL,
		APIKey:     os.Getenv("CLOB_API_KEY"),
		Wallet:     os.Getenv("WALLET_ADDRESS"),
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return brokerobs.Wrap(brk)
}

// initializeAgents builds the enabled voting agents with observability
func initializeAgents(ctx context.Context, cfg *store.Config) []interfaces.Agent {
	built := []interfaces.Agent{}

	for _, ac := range cfg.Agents {
		if !ac.Enabled {
			continue
		}

		var agent interfaces.Agent
		switch ac.Kind {
		case "TECHNICAL":
			agent = agents.NewTechnical(ac.Name, ac.Quality, cfg)
		case "MOMENTUM":
			agent = agents.NewMomentum(ac.Name, ac.Quality, cfg.Indicators.ROCPeriod)
		case "SENTIMENT":
			agent = agents.NewSentiment(ac.Name, ac.Quality, cfg)
		default:
			agent = agents.NewAbstainer(ac.Name, ac.Quality)
			logger.Warn(ctx, "Unknown agent kind - using abstaining agent",
				"agent", ac.Name, "kind", ac.Kind)
		}

		built = append(built, agentobs.Wrap(agent))
	}

	logger.Info(ctx, "Agents initialized", "count", len(built))
	return built
}

// initializeEngine wires the trading engine with observability
func initializeEngine(cfg *store.Config, brk interfaces.Broker, ag []interfaces.Agent) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, brk, ag))
}
