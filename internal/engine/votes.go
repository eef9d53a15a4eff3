package engine

import (
	"context"
	"sync"
	"time"

	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/types"
)

const defaultVoteTimeout = 10 * time.Second

// collectVotes gathers one vote per agent concurrently. The aggregator
// must see a complete, stable snapshot, so every agent gets a slot in
// input order and slow or failing agents surface as implicit Skip
// votes rather than holes.
func (e *engine) collectVotes(ctx context.Context, asset string, candles []types.Candle) []types.Vote {
	votes := make([]types.Vote, len(e.agents))

	var wg sync.WaitGroup
	for i, agent := range e.agents {
		wg.Add(1)
		go func(i int, a interfaces.Agent) {
			defer wg.Done()

			timeout := e.voteTimeout(a.Name())
			voteCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan types.Vote, 1)
			go func() {
				v, err := a.Vote(voteCtx, asset, candles)
				if err != nil {
					logger.Warn(ctx, "Agent errored, treating as abstention",
						"agent", a.Name(), "asset", asset, "error", err)
					done <- implicitSkip(a.Name(), "agent error")
					return
				}
				done <- v
			}()

			select {
			case v := <-done:
				votes[i] = v
			case <-voteCtx.Done():
				logger.Warn(ctx, "Agent timed out, treating as abstention",
					"agent", a.Name(), "asset", asset, "timeout", timeout)
				votes[i] = implicitSkip(a.Name(), "timeout")
			}
		}(i, agent)
	}
	wg.Wait()

	return votes
}

func (e *engine) voteTimeout(agentName string) time.Duration {
	for _, a := range e.cfg.Agents {
		if a.Name == agentName {
			return a.AgentTimeout()
		}
	}
	return defaultVoteTimeout
}

func implicitSkip(agentName, why string) types.Vote {
	return types.Vote{AgentName: agentName, Direction: types.DirectionSkip, Reason: why}
}
