package agents

import (
	"context"

	"quorum-trading-bot/internal/types"
)

// Static always casts the same vote. Used when no real agent is
// configured for a slot and in wiring tests.
type Static struct {
	name string
	vote types.Vote
}

func NewStatic(name string, direction types.Direction, confidence, quality float64) *Static {
	return &Static{
		name: name,
		vote: types.Vote{
			AgentName:  name,
			Direction:  direction,
			Confidence: confidence,
			Quality:    quality,
			Reason:     "static",
		},
	}
}

// NewAbstainer is a Static that always abstains.
func NewAbstainer(name string, quality float64) *Static {
	return NewStatic(name, types.DirectionSkip, 0, quality)
}

func (s *Static) Name() string { return s.name }

func (s *Static) Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error) {
	return s.vote, nil
}
