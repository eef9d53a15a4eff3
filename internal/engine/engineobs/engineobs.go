package engineobs

import (
	"context"
	"time"

	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/trace"
	"quorum-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Step(ctx context.Context, asset string) (*types.RoundResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting decision round",
		"asset", asset,
	)

	result, err := oe.engine.Step(ctx, asset)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Decision round failed", err,
			"asset", asset,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Decision round completed",
		"asset", asset,
		"epoch", result.Epoch,
		"decision", result.Consensus.Decision,
		"confidence", result.Consensus.AggregateConfidence,
		"severity", result.Verdict.Severity,
		"orders", len(result.Orders),
		"reason", result.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
