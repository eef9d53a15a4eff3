package interfaces

import (
	"context"

	"quorum-trading-bot/internal/types"
)

// Agent is an independent signal source producing one directional
// opinion per decision round. Implementations vary: rule-based signal,
// momentum, sentiment scorer. The engine treats every agent uniformly
// via the Vote shape; an agent that cannot form an opinion returns a
// Skip vote rather than an error where possible.
type Agent interface {
	Name() string
	Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error)
}
