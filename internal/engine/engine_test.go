package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quorum-trading-bot/internal/agents"
	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/types"
)

type fakeBroker struct {
	candles   []types.Candle
	positions []types.Position
	posErr    error
	orders    []types.OrderReq
}

func (f *fakeBroker) LTP(ctx context.Context, asset string) (float64, error) {
	if len(f.candles) == 0 {
		return 0, errors.New("no candles")
	}
	return f.candles[len(f.candles)-1].Close, nil
}

func (f *fakeBroker) RecentCandles(ctx context.Context, asset string, n int) ([]types.Candle, error) {
	return f.candles, nil
}

func (f *fakeBroker) Positions(ctx context.Context) ([]types.Position, error) {
	if f.posErr != nil {
		return nil, f.posErr
	}
	return f.positions, nil
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	f.orders = append(f.orders, req)
	return types.OrderResp{OrderID: "test-1", Status: "SIMULATED", Price: 0.52}, nil
}

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Mode = "DRY_RUN"
	cfg.Assets = []string{"BTC"}
	cfg.EpochMinutes = 15
	cfg.Agents = []store.AgentConfig{
		{Name: "bull", Weight: 1.0, Quality: 0.8, Enabled: true, TimeoutSeconds: 5},
		{Name: "bear", Weight: 1.0, Quality: 0.8, Enabled: true, TimeoutSeconds: 5},
	}
	cfg.Consensus.MinConfidence = 0.55
	cfg.Guard.DustThreshold = 0.01
	cfg.Stake.Default = 5.0
	cfg.Risk.AccountValue = 100.0
	return cfg
}

func someCandles() []types.Candle {
	cs := make([]types.Candle, 60)
	for i := range cs {
		cs[i] = types.Candle{Ts: int64(i), Close: 100.0 + float64(i)*0.1}
	}
	return cs
}

func TestStepPlacesOrderOnConsensus(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{candles: someCandles()}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.9, 0.8),
		agents.NewStatic("bear", types.DirectionUp, 0.7, 0.8),
	}
	eng := newEngine(testConfig(), brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Consensus.Decision != types.DecisionUp {
		t.Errorf("expected UP consensus, got %s", res.Consensus.Decision)
	}
	if len(res.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(res.Orders))
	}
	if len(brk.orders) != 1 {
		t.Fatalf("expected broker to receive 1 order, got %d", len(brk.orders))
	}
	if brk.orders[0].Direction != types.DirectionUp {
		t.Errorf("expected UP order, got %s", brk.orders[0].Direction)
	}
	if brk.orders[0].Stake != 5.0 {
		t.Errorf("expected default stake 5.0, got %f", brk.orders[0].Stake)
	}
}

func TestStepBlockedByOpposingPosition(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{
		candles: someCandles(),
		positions: []types.Position{
			{Title: "BTC will go down in the next 15 minutes", Outcome: "Down", Size: 31.0},
		},
	}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.9, 0.8),
		agents.NewStatic("bear", types.DirectionUp, 0.7, 0.8),
	}
	eng := newEngine(testConfig(), brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verdict.Allowed {
		t.Fatal("expected verdict to block")
	}
	if res.Verdict.Severity != types.SeverityOpposingCritical {
		t.Errorf("expected OPPOSING_CRITICAL, got %s", res.Verdict.Severity)
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected no order after block, got %d", len(brk.orders))
	}
}

func TestStepNoConsensusOnTie(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{candles: someCandles()}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.8, 0.8),
		agents.NewStatic("bear", types.DirectionDown, 0.8, 0.8),
	}
	eng := newEngine(testConfig(), brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Consensus.Decision != types.DecisionNoConsensus {
		t.Errorf("expected NO_CONSENSUS, got %s", res.Consensus.Decision)
	}
	if res.Consensus.Reason != types.ReasonTieNoEdge {
		t.Errorf("expected tie reason, got %q", res.Consensus.Reason)
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected no order on tie, got %d", len(brk.orders))
	}
}

func TestStepAllAbstainedDoesNotTrade(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{candles: someCandles()}
	ag := []interfaces.Agent{
		agents.NewAbstainer("bull", 0.8),
		agents.NewAbstainer("bear", 0.8),
	}
	eng := newEngine(testConfig(), brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Consensus.Decision != types.DecisionNoConsensus {
		t.Errorf("expected NO_CONSENSUS, got %s", res.Consensus.Decision)
	}
	if res.Consensus.Reason != types.ReasonAllAbstained {
		t.Errorf("expected all-abstained reason, got %q", res.Consensus.Reason)
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected no order when all abstained, got %d", len(brk.orders))
	}
}

func TestStepNoAgentsIsError(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{candles: someCandles()}
	eng := newEngine(testConfig(), brk, nil)

	if _, err := eng.Step(context.Background(), "BTC"); err == nil {
		t.Fatal("expected error when no agents are wired")
	}
}

func TestStepBelowConfidenceThresholdDoesNotTrade(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	cfg := testConfig()
	cfg.Consensus.MinConfidence = 0.95

	brk := &fakeBroker{candles: someCandles()}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.6, 0.8),
		agents.NewStatic("bear", types.DirectionDown, 0.5, 0.8),
	}
	eng := newEngine(cfg, brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Consensus.Decision != types.DecisionUp {
		t.Errorf("expected UP consensus, got %s", res.Consensus.Decision)
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected no order below threshold, got %d", len(brk.orders))
	}
	if !strings.Contains(res.Reason, "below threshold") {
		t.Errorf("expected threshold reason, got %q", res.Reason)
	}
}

func TestStepPositionQueryFailureAbortsRound(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	brk := &fakeBroker{candles: someCandles(), posErr: errors.New("api down")}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.9, 0.8),
		agents.NewStatic("bear", types.DirectionUp, 0.7, 0.8),
	}
	eng := newEngine(testConfig(), brk, ag)

	if _, err := eng.Step(context.Background(), "BTC"); err == nil {
		t.Fatal("expected error when positions cannot be fetched")
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected no order without a guard check, got %d", len(brk.orders))
	}
}

func TestStepRiskCapBlocks(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	cfg := testConfig()
	cfg.Risk.PerTradeRiskPct = 2.0 // stake 5 on account 100 is 5%

	brk := &fakeBroker{candles: someCandles()}
	ag := []interfaces.Agent{
		agents.NewStatic("bull", types.DirectionUp, 0.9, 0.8),
		agents.NewStatic("bear", types.DirectionUp, 0.7, 0.8),
	}
	eng := newEngine(cfg, brk, ag)

	res, err := eng.Step(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(brk.orders) != 0 {
		t.Fatalf("expected risk cap to block, got %d orders", len(brk.orders))
	}
	if !strings.Contains(res.Reason, "risk cap") {
		t.Errorf("expected risk cap reason, got %q", res.Reason)
	}
}
