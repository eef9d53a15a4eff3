package agents

import (
	"context"
	"testing"
	"time"

	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/types"
)

func risingCandles(n int) []types.Candle {
	cs := make([]types.Candle, n)
	price := 100.0
	for i := range cs {
		price *= 1.002
		cs[i] = types.Candle{Ts: int64(i), Close: price}
	}
	return cs
}

func fallingCandles(n int) []types.Candle {
	cs := make([]types.Candle, n)
	price := 100.0
	for i := range cs {
		price *= 0.998
		cs[i] = types.Candle{Ts: int64(i), Close: price}
	}
	return cs
}

func TestMomentumVotesWithTrend(t *testing.T) {
	m := NewMomentum("momentum", 0.7, 10)

	v, err := m.Vote(context.Background(), "BTC", risingCandles(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionUp {
		t.Errorf("expected UP in an uptrend, got %s", v.Direction)
	}
	if v.Confidence <= 0.5 || v.Confidence > 1.0 {
		t.Errorf("confidence out of range: %f", v.Confidence)
	}
	if v.Quality != 0.7 {
		t.Errorf("expected quality 0.7, got %f", v.Quality)
	}

	v, err = m.Vote(context.Background(), "BTC", fallingCandles(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionDown {
		t.Errorf("expected DOWN in a downtrend, got %s", v.Direction)
	}
}

func TestMomentumAbstainsOnShortHistory(t *testing.T) {
	m := NewMomentum("momentum", 0.7, 10)

	v, err := m.Vote(context.Background(), "BTC", risingCandles(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionSkip {
		t.Errorf("expected SKIP on short history, got %s", v.Direction)
	}
}

func TestMomentumAbstainsInDeadZone(t *testing.T) {
	m := NewMomentum("momentum", 0.7, 10)

	flat := make([]types.Candle, 30)
	for i := range flat {
		flat[i] = types.Candle{Ts: int64(i), Close: 100.0}
	}
	v, err := m.Vote(context.Background(), "BTC", flat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionSkip {
		t.Errorf("expected SKIP in a flat market, got %s", v.Direction)
	}
}

func TestTechnicalVotesInTrend(t *testing.T) {
	cfg := &store.Config{}
	cfg.Indicators.SMAWindows = []int{20, 50}
	cfg.Indicators.RSIPeriod = 14
	cfg.Indicators.BBWindow = 20
	cfg.Indicators.BBStdDev = 2.0

	tech := NewTechnical("technical", 0.75, cfg)

	v, err := tech.Vote(context.Background(), "BTC", risingCandles(80))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionUp {
		t.Errorf("expected UP in a steady uptrend, got %s (%s)", v.Direction, v.Reason)
	}
}

func TestTechnicalAbstainsOnShortHistory(t *testing.T) {
	cfg := &store.Config{}
	cfg.Indicators.SMAWindows = []int{20, 50}
	cfg.Indicators.RSIPeriod = 14
	cfg.Indicators.BBWindow = 20
	cfg.Indicators.BBStdDev = 2.0

	tech := NewTechnical("technical", 0.75, cfg)

	v, err := tech.Vote(context.Background(), "BTC", risingCandles(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionSkip {
		t.Errorf("expected SKIP on short history, got %s", v.Direction)
	}
}

func TestStaticVote(t *testing.T) {
	s := NewStatic("static", types.DirectionDown, 0.6, 0.5)

	v, err := s.Vote(context.Background(), "ETH", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AgentName != "static" || v.Direction != types.DirectionDown {
		t.Errorf("unexpected vote: %+v", v)
	}
}

func TestHeadlineScorer(t *testing.T) {
	scorer := newHeadlineScorer()

	score := scorer.Score([]string{
		"Bitcoin surges to new record high on ETF inflow",
		"BTC rally continues as institutions accumulate",
		"Analysts warn of possible crash after parabolic move",
		"Weather nice today",
	})

	if score.Headlines != 4 {
		t.Errorf("expected 4 headlines, got %d", score.Headlines)
	}
	if score.Bullish != 2 {
		t.Errorf("expected 2 bullish, got %d", score.Bullish)
	}
	if score.Bearish != 1 {
		t.Errorf("expected 1 bearish, got %d", score.Bearish)
	}
	if score.Net() <= 0 {
		t.Errorf("expected positive net polarity, got %f", score.Net())
	}
}

func TestSentimentCacheExpiry(t *testing.T) {
	cache := newSentimentCache(50 * time.Millisecond)

	cache.set("BTC", SentimentScore{Headlines: 3, Bullish: 2})

	got, found := cache.get("BTC")
	if !found {
		t.Fatal("expected cached score")
	}
	if got.Bullish != 2 {
		t.Errorf("expected bullish 2, got %d", got.Bullish)
	}

	time.Sleep(100 * time.Millisecond)
	if _, found := cache.get("BTC"); found {
		t.Error("expected cache entry to be expired")
	}
}

func TestSentimentDisabledAbstains(t *testing.T) {
	cfg := &store.Config{}
	cfg.Sentiment.Enabled = false
	cfg.Sentiment.MaxHeadlines = 10
	cfg.Sentiment.CacheMinutes = 1
	cfg.Sentiment.TimeoutSeconds = 1

	s := NewSentiment("sentiment", 0.6, cfg)

	v, err := s.Vote(context.Background(), "BTC", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Direction != types.DirectionSkip {
		t.Errorf("expected SKIP when disabled, got %s", v.Direction)
	}
}

func TestQueryTermMapping(t *testing.T) {
	if got := queryTerm("BTC"); got != "bitcoin" {
		t.Errorf("expected bitcoin, got %s", got)
	}
	if got := queryTerm("DOGE"); got != "doge" {
		t.Errorf("expected lowercase fallback, got %s", got)
	}
}
