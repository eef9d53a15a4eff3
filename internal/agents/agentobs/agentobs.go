package agentobs

import (
	"context"

	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/trace"
	"quorum-trading-bot/internal/types"
)

// observableAgent wraps an Agent with observability (logging & tracing)
type observableAgent struct {
	agent interfaces.Agent
}

// Compile-time interface check
var _ interfaces.Agent = (*observableAgent)(nil)

// Wrap wraps an agent with observability middleware
func Wrap(agent interfaces.Agent) interfaces.Agent {
	return &observableAgent{
		agent: agent,
	}
}

func (oa *observableAgent) Name() string {
	return oa.agent.Name()
}

// Vote produces a vote with observability
func (oa *observableAgent) Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error) {
	ctx, span := trace.StartSpan(ctx, "agent.Vote")
	defer span.End()

	// Skip(1) so the actual caller is reported, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting agent vote",
		"agent", oa.agent.Name(),
		"asset", asset,
		"candles", len(candles),
	)

	vote, err := oa.agent.Vote(ctx, asset, candles)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Agent vote failed", err,
			"agent", oa.agent.Name(),
			"asset", asset,
		)
		return types.Vote{}, err
	}

	logger.InfoSkip(ctx, 1, "Agent vote received",
		"agent", vote.AgentName,
		"asset", asset,
		"direction", vote.Direction,
		"confidence", vote.Confidence,
		"quality", vote.Quality,
		"reason", vote.Reason,
	)

	return vote, nil
}
