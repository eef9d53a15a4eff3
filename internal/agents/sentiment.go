package agents

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/types"
)

// Sentiment votes from the net polarity of recent crypto news
// headlines. Scrape results are cached per asset so one vote per epoch
// does not re-hit the sources every poll. A neutral read or a scrape
// failure is an abstention, never an error — the round must go on.
type Sentiment struct {
	name    string
	quality float64
	scraper *headlineScraper
	scorer  *headlineScorer
	cache   *sentimentCache
	enabled bool
}

func NewSentiment(name string, quality float64, cfg *store.Config) *Sentiment {
	return &Sentiment{
		name:    name,
		quality: quality,
		scraper: newHeadlineScraper(time.Duration(cfg.Sentiment.TimeoutSeconds)*time.Second, cfg.Sentiment.MaxHeadlines),
		scorer:  newHeadlineScorer(),
		cache:   newSentimentCache(time.Duration(cfg.Sentiment.CacheMinutes) * time.Minute),
		enabled: cfg.Sentiment.Enabled,
	}
}

func (s *Sentiment) Name() string { return s.name }

func (s *Sentiment) Vote(ctx context.Context, asset string, candles []types.Candle) (types.Vote, error) {
	if !s.enabled {
		return s.abstain("sentiment analysis disabled"), nil
	}

	score, ok := s.cache.get(asset)
	if !ok {
		headlines, err := s.scraper.Scrape(ctx, asset)
		if err != nil {
			logger.Warn(ctx, "Headline scrape failed, abstaining", "agent", s.name, "asset", asset, "error", err)
			return s.abstain("scrape failed"), nil
		}
		score = s.scorer.Score(headlines)
		s.cache.set(asset, score)
		logger.Debug(ctx, "Headline sentiment computed",
			"agent", s.name,
			"asset", asset,
			"headlines", score.Headlines,
			"bullish", score.Bullish,
			"bearish", score.Bearish,
		)
	}

	net := score.Net()
	if score.Headlines == 0 || math.Abs(net) < 0.15 {
		return s.abstain("neutral sentiment"), nil
	}

	dir := types.DirectionUp
	if net < 0 {
		dir = types.DirectionDown
	}

	return types.Vote{
		AgentName:  s.name,
		Direction:  dir,
		Confidence: 0.5 + 0.5*math.Min(math.Abs(net), 1.0),
		Quality:    s.quality,
		Reason:     fmt.Sprintf("%d headlines, net polarity %.2f", score.Headlines, net),
	}, nil
}

func (s *Sentiment) abstain(why string) types.Vote {
	return types.Vote{AgentName: s.name, Direction: types.DirectionSkip, Quality: s.quality, Reason: why}
}

// SentimentScore is the aggregate polarity of one scrape.
type SentimentScore struct {
	Headlines int
	Bullish   int
	Bearish   int
}

// Net is the bull/bear imbalance in [-1,1].
func (s SentimentScore) Net() float64 {
	if s.Headlines == 0 {
		return 0
	}
	return float64(s.Bullish-s.Bearish) / float64(s.Headlines)
}

// headlineScorer classifies headlines with fixed keyword lists. Crude,
// but deterministic and testable offline.
type headlineScorer struct {
	bullish []string
	bearish []string
}

func newHeadlineScorer() *headlineScorer {
	return &headlineScorer{
		bullish: []string{
			"surge", "rally", "soar", "jump", "gain", "bull", "record high",
			"breakout", "adoption", "approve", "inflow", "accumulate",
		},
		bearish: []string{
			"crash", "plunge", "drop", "fall", "dump", "bear", "sell-off",
			"selloff", "outflow", "liquidat", "ban", "hack", "fraud",
		},
	}
}

func (hs *headlineScorer) Score(headlines []string) SentimentScore {
	score := SentimentScore{Headlines: len(headlines)}
	for _, h := range headlines {
		lower := strings.ToLower(h)
		switch {
		case hs.matches(lower, hs.bullish):
			score.Bullish++
		case hs.matches(lower, hs.bearish):
			score.Bearish++
		}
	}
	return score
}

func (hs *headlineScorer) matches(headline string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(headline, k) {
			return true
		}
	}
	return false
}

// sentimentCache stores scrape scores per asset with a TTL.
type sentimentCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	score     SentimentScore
	timestamp time.Time
}

func newSentimentCache(ttl time.Duration) *sentimentCache {
	return &sentimentCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *sentimentCache) get(asset string) (SentimentScore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[asset]
	if !exists {
		return SentimentScore{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return SentimentScore{}, false
	}
	return entry.score, true
}

func (c *sentimentCache) set(asset string, score SentimentScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[asset] = &cacheEntry{score: score, timestamp: time.Now()}
}
