package agents

import (
	"context"
	"fmt"
	"math"

	"quorum-trading-bot/internal/ta"
	"quorum-trading-bot/internal/types"
)

// Momentum votes from the rate of change over a lookback window, with a
// neutral dead zone so small drifts become abstentions rather than
// low-conviction directional calls.
type Momentum struct {
	name      string
	quality   float64
	rocPeriod int
	deadZone  float64 // |roc| below this abstains
}

func NewMomentum(name string, quality float64, rocPeriod int) *Momentum {
	return &Momentum{
		name:      name,
		quality:   quality,
		rocPeriod: rocPeriod,
		deadZone:  0.0005,
	}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error) {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	roc := ta.ROC(closes, m.rocPeriod)
	if math.IsNaN(roc) {
		return types.Vote{AgentName: m.name, Direction: types.DirectionSkip, Quality: m.quality, Reason: "insufficient candle history"}, nil
	}
	if math.Abs(roc) < m.deadZone {
		return types.Vote{AgentName: m.name, Direction: types.DirectionSkip, Quality: m.quality, Reason: "no momentum edge"}, nil
	}

	dir := types.DirectionUp
	if roc < 0 {
		dir = types.DirectionDown
	}

	// Saturates around 1% move over the lookback.
	confidence := 0.5 + 0.5*math.Min(math.Abs(roc)/0.01, 1.0)

	return types.Vote{
		AgentName:  m.name,
		Direction:  dir,
		Confidence: confidence,
		Quality:    m.quality,
		Reason:     fmt.Sprintf("roc(%d)=%.5f", m.rocPeriod, roc),
	}, nil
}
