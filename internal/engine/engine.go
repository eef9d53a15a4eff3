package engine

import (
	"context"
	"fmt"
	"time"

	"quorum-trading-bot/internal/consensus"
	"quorum-trading-bot/internal/guard"
	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/metrics"
	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/tradelog"
	"quorum-trading-bot/internal/types"
)

const candleLookback = 120

type engine struct {
	cfg    *store.Config
	brk    interfaces.Broker
	agents []interfaces.Agent
	agg    *consensus.Aggregator
	grd    *guard.Guard
	risk   *riskManager
	now    func() time.Time
}

func newEngine(cfg *store.Config, brk interfaces.Broker, agents []interfaces.Agent) *engine {
	return &engine{
		cfg:    cfg,
		brk:    brk,
		agents: agents,
		agg:    consensus.New(cfg.Agents),
		grd:    guard.New(cfg.Guard.DustThreshold),
		risk:   newRiskManager(cfg.Risk.AccountValue),
		now:    time.Now,
	}
}

// Step runs one full decision round for an asset: collect votes,
// aggregate, guard against position conflicts, then trade if allowed.
// NoConsensus and guard blocks are valid negative outcomes, not errors;
// the bot continues to the next asset/epoch.
func (e *engine) Step(ctx context.Context, asset string) (*types.RoundResult, error) {
	now := e.now().UTC()
	epoch := now.Unix() / int64(e.cfg.EpochLength().Seconds())

	logger.Debug(ctx, "Starting decision round", "asset", asset, "epoch", epoch)

	candles, err := e.brk.RecentCandles(ctx, asset, candleLookback)
	if err != nil {
		return nil, fmt.Errorf("candle fetch for %s: %w", asset, err)
	}

	votes := e.collectVotes(ctx, asset, candles)
	for _, v := range votes {
		metrics.VotesTotal.WithLabelValues(v.AgentName, string(v.Direction)).Inc()
	}

	// An empty vote set means no agents are wired at all; abort the
	// round before any order path rather than defaulting to no-trade.
	result, err := e.agg.Aggregate(votes)
	if err != nil {
		return nil, fmt.Errorf("aggregation for %s epoch %d: %w", asset, epoch, err)
	}

	logger.Consensus(ctx, asset, string(result.Decision), result.AggregateConfidence, result.Reason,
		"epoch", epoch,
		"up_score", result.UpScore,
		"down_score", result.DownScore,
		"participants", len(result.ParticipatingAgents),
	)
	metrics.ConsensusTotal.WithLabelValues(asset, string(result.Decision), noConsensusReason(result)).Inc()

	round := &types.RoundResult{
		Asset:     asset,
		Epoch:     epoch,
		Votes:     votes,
		Consensus: result,
		Verdict:   types.ConflictVerdict{Allowed: true, Severity: types.SeverityNone},
		Time:      now.Unix(),
	}

	if result.Decision == types.DecisionNoConsensus {
		round.Reason = "no consensus: " + result.Reason
		e.journalDecision(round, "")
		return round, nil
	}

	if result.AggregateConfidence < e.cfg.Consensus.MinConfidence {
		round.Reason = fmt.Sprintf("consensus confidence %.3f below threshold %.3f",
			result.AggregateConfidence, e.cfg.Consensus.MinConfidence)
		e.journalDecision(round, "")
		return round, nil
	}

	proposed := result.Decision.Direction()

	positions, err := e.brk.Positions(ctx)
	if err != nil {
		// Without positions the guard cannot run; trading blind past it
		// is not an option.
		return nil, fmt.Errorf("position query for %s: %w", asset, err)
	}

	verdict := e.grd.Check(positions, asset, proposed)
	round.Verdict = verdict
	if !verdict.Allowed {
		logger.Conflict(ctx, asset, string(verdict.Severity), verdict.Message, "epoch", epoch)
		metrics.ConflictsTotal.WithLabelValues(asset, string(verdict.Severity)).Inc()
		round.Reason = "blocked: " + verdict.Message
		e.journalDecision(round, string(verdict.Severity))
		return round, nil
	}

	price := 0.0
	if len(candles) > 0 {
		price = candles[len(candles)-1].Close
	}
	stake := e.cfg.StakeFor(asset)

	if exceeded, exposure := e.risk.validateTrade(ctx, asset, stake, e.cfg.Risk.PerTradeRiskPct); exceeded {
		round.Reason = fmt.Sprintf("blocked: risk cap (exposure %.2f)", exposure)
		e.journalDecision(round, "")
		return round, nil
	}

	resp, err := e.brk.PlaceOrder(ctx, types.OrderReq{
		Asset:     asset,
		Direction: proposed,
		Stake:     stake,
		Epoch:     epoch,
		Tag:       "CONSENSUS",
	})
	if err != nil {
		round.Reason = "order_err: " + err.Error()
		e.journalDecision(round, "")
		return round, nil
	}

	round.Orders = append(round.Orders, resp)
	round.Reason = result.Reason
	metrics.OrdersTotal.WithLabelValues(asset, string(proposed)).Inc()
	logger.Trade(ctx, asset, string(proposed), stake, price, resp.OrderID,
		"epoch", epoch,
		"confidence", result.AggregateConfidence,
	)

	shares := resp.Shares
	if shares == 0 && resp.Price > 0 {
		shares = stake / resp.Price
	}
	winningScore := result.UpScore
	if proposed == types.DirectionDown {
		winningScore = result.DownScore
	}
	_ = tradelog.Append(tradelog.Entry{
		Strategy:      "CONSENSUS",
		Asset:         asset,
		Epoch:         epoch,
		Direction:     string(proposed),
		OrderID:       resp.OrderID,
		Reason:        result.Reason,
		EntryPrice:    resp.Price,
		Size:          stake,
		Shares:        shares,
		Confidence:    result.AggregateConfidence,
		WeightedScore: winningScore,
	})
	e.journalDecision(round, "")

	return round, nil
}

// journalDecision appends the round's consensus outcome to the decision
// journal, tagged with the guard verdict when one blocked the trade.
func (e *engine) journalDecision(round *types.RoundResult, verdict string) {
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Asset:      round.Asset,
		Epoch:      round.Epoch,
		Decision:   string(round.Consensus.Decision),
		Reason:     round.Reason,
		Confidence: round.Consensus.AggregateConfidence,
		UpScore:    round.Consensus.UpScore,
		DownScore:  round.Consensus.DownScore,
		Agents:     round.Consensus.ParticipatingAgents,
		Verdict:    verdict,
	})
}

// noConsensusReason returns the NoConsensus root cause as a metric
// label; directional decisions share the empty label.
func noConsensusReason(r types.ConsensusResult) string {
	if r.Decision != types.DecisionNoConsensus {
		return ""
	}
	return r.Reason
}
