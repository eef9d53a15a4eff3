// Package agents provides the voting agent implementations consumed by
// the engine. Every agent renders its opinion as a Vote; an agent that
// cannot form an opinion abstains with a Skip vote.
package agents

import (
	"context"
	"fmt"
	"math"

	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/ta"
	"quorum-trading-bot/internal/types"
)

// Technical votes from classic indicator agreement: price vs short SMA,
// RSI regime, and position inside the Bollinger band. It abstains when
// the signals disagree or the candle history is too short.
type Technical struct {
	name    string
	quality float64
	cfg     struct {
		SMAWindows []int
		RSIPeriod  int
		BBWindow   int
		BBStdDev   float64
	}
}

func NewTechnical(name string, quality float64, cfg *store.Config) *Technical {
	t := &Technical{name: name, quality: quality}
	t.cfg.SMAWindows = cfg.Indicators.SMAWindows
	t.cfg.RSIPeriod = cfg.Indicators.RSIPeriod
	t.cfg.BBWindow = cfg.Indicators.BBWindow
	t.cfg.BBStdDev = cfg.Indicators.BBStdDev
	return t
}

func (t *Technical) Name() string { return t.name }

func (t *Technical) Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error) {
	minBars := t.cfg.BBWindow
	for _, w := range t.cfg.SMAWindows {
		if w > minBars {
			minBars = w
		}
	}
	if len(candles) < minBars+1 {
		return t.abstain("insufficient candle history"), nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	price := closes[len(closes)-1]

	shortSMA := ta.SMA(closes, t.cfg.SMAWindows[0])
	rsi := ta.RSI(closes, t.cfg.RSIPeriod)
	mid, _, _ := ta.Bollinger(closes, t.cfg.BBWindow, t.cfg.BBStdDev)
	if math.IsNaN(shortSMA) || math.IsNaN(rsi) || math.IsNaN(mid) {
		return t.abstain("indicators not computable"), nil
	}

	bullish, bearish := 0, 0
	tally := func(up bool) {
		if up {
			bullish++
		} else {
			bearish++
		}
	}
	tally(price > shortSMA)
	tally(price > mid)
	if rsi > 55 {
		bullish++
	} else if rsi < 45 {
		bearish++
	}

	net := bullish - bearish
	if net == 0 {
		return t.abstain("signals disagree"), nil
	}

	dir := types.DirectionUp
	if net < 0 {
		dir = types.DirectionDown
	}
	agreement := float64(max(bullish, bearish)) / 3.0

	return types.Vote{
		AgentName:  t.name,
		Direction:  dir,
		Confidence: 0.5 + 0.5*agreement,
		Quality:    t.quality,
		Reason:     fmt.Sprintf("rsi=%.1f price/sma=%.4f bullish=%d bearish=%d", rsi, price/shortSMA, bullish, bearish),
	}, nil
}

func (t *Technical) abstain(why string) types.Vote {
	return types.Vote{AgentName: t.name, Direction: types.DirectionSkip, Quality: t.quality, Reason: why}
}
