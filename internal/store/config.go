package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentConfig describes one configured voting agent. Weight is the
// static importance multiplier applied to the agent's weighted score;
// Quality is the caller-assigned reliability multiplier (e.g. recent
// historical accuracy) handed to the agent when it votes.
type AgentConfig struct {
	Name           string  `yaml:"name"`
	Kind           string  `yaml:"kind"` // TECHNICAL, MOMENTUM, SENTIMENT, STATIC
	Weight         float64 `yaml:"weight"`
	Quality        float64 `yaml:"quality"`
	Enabled        bool    `yaml:"enabled"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type Config struct {
	Mode         string   `yaml:"mode"` // DRY_RUN or LIVE
	Assets       []string `yaml:"assets"`
	EpochMinutes int      `yaml:"epoch_minutes"`
	PollSeconds  int      `yaml:"poll_seconds"`

	Agents []AgentConfig `yaml:"agents"`

	Consensus struct {
		// Minimum aggregate confidence (winner's share of directional
		// weight) required before the engine will act on a decision.
		MinConfidence float64 `yaml:"min_confidence"`
	} `yaml:"consensus"`

	Guard struct {
		// Positions with stake below this are treated as non-existent.
		DustThreshold float64 `yaml:"dust_threshold"`
	} `yaml:"guard"`

	Stake struct {
		Default  float64            `yaml:"default"`
		PerAsset map[string]float64 `yaml:"per_asset"`
	} `yaml:"stake"`

	Risk struct {
		PerTradeRiskPct float64 `yaml:"per_trade_risk_pct"`
		AccountValue    float64 `yaml:"account_value"`
	} `yaml:"risk"`

	Broker struct {
		GammaURL   string `yaml:"gamma_url"`
		DataAPIURL string `yaml:"data_api_url"`
		ClobURL    string `yaml:"clob_url"`
	} `yaml:"broker"`

	Sentiment struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		CacheMinutes   int  `yaml:"cache_minutes"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"sentiment"`

	Indicators struct {
		SMAWindows []int   `yaml:"sma_windows"`
		RSIPeriod  int     `yaml:"rsi_period"`
		BBWindow   int     `yaml:"bb_window"`
		BBStdDev   float64 `yaml:"bb_stddev"`
		ROCPeriod  int     `yaml:"roc_period"`
	} `yaml:"indicators"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Assets) == 0 {
		return errors.New("assets cannot be empty")
	}
	enabled := 0
	for i, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agents[%d]: name cannot be empty", i)
		}
		if a.Weight < 0 {
			return fmt.Errorf("agent '%s': weight must be >= 0, got %.2f", a.Name, a.Weight)
		}
		if a.Quality < 0 || a.Quality > 1 {
			return fmt.Errorf("agent '%s': quality must be in [0,1], got %.2f", a.Name, a.Quality)
		}
		if a.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.New("at least one agent must be enabled")
	}
	if c.Consensus.MinConfidence < 0 || c.Consensus.MinConfidence > 1 {
		return fmt.Errorf("consensus.min_confidence must be in [0,1], got %.2f", c.Consensus.MinConfidence)
	}
	if c.Risk.PerTradeRiskPct < 0 || c.Risk.PerTradeRiskPct > 100 {
		return fmt.Errorf("risk.per_trade_risk_pct must be between 0-100, got %.2f", c.Risk.PerTradeRiskPct)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.EpochMinutes == 0 {
		c.EpochMinutes = 15
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 30
	}
	if c.Guard.DustThreshold == 0 {
		c.Guard.DustThreshold = 0.01
	}
	if c.Stake.Default == 0 {
		c.Stake.Default = 5.0
	}
	if c.Risk.AccountValue == 0 {
		c.Risk.AccountValue = 100.0
	}
	if c.Sentiment.MaxHeadlines == 0 {
		c.Sentiment.MaxHeadlines = 15
	}
	if c.Sentiment.CacheMinutes == 0 {
		c.Sentiment.CacheMinutes = 10
	}
	if c.Sentiment.TimeoutSeconds == 0 {
		c.Sentiment.TimeoutSeconds = 30
	}
	if len(c.Indicators.SMAWindows) == 0 {
		c.Indicators.SMAWindows = []int{20, 50}
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2.0
	}
	if c.Indicators.ROCPeriod == 0 {
		c.Indicators.ROCPeriod = 10
	}
	for i := range c.Agents {
		if c.Agents[i].Weight == 0 {
			c.Agents[i].Weight = 1.0
		}
		if c.Agents[i].Quality == 0 {
			c.Agents[i].Quality = 0.5
		}
		if c.Agents[i].TimeoutSeconds == 0 {
			c.Agents[i].TimeoutSeconds = 10
		}
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9109"
	}
}

// AgentTimeout returns the vote-collection timeout for one agent.
func (a AgentConfig) AgentTimeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// EpochLength returns the market window duration.
func (c *Config) EpochLength() time.Duration {
	return time.Duration(c.EpochMinutes) * time.Minute
}

// StakeFor returns the configured stake for an asset.
func (c *Config) StakeFor(asset string) float64 {
	if v, ok := c.Stake.PerAsset[asset]; ok {
		return v
	}
	return c.Stake.Default
}
