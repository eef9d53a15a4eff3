package types

// Direction is an agent's directional call for one epoch.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionSkip Direction = "SKIP" // abstain, contributes no weight
)

// Opposite returns the other tradeable side. Skip has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	}
	return DirectionSkip
}

// Vote is one agent's opinion for one asset/epoch.
type Vote struct {
	AgentName  string    `json:"agent_name"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"` // [0,1] self-assessed probability
	Quality    float64   `json:"quality"`    // [0,1] reliability multiplier
	Reason     string    `json:"reason,omitempty"`
}

// ConsensusDecision is the outcome of one aggregation round.
type ConsensusDecision string

const (
	DecisionUp          ConsensusDecision = "UP"
	DecisionDown        ConsensusDecision = "DOWN"
	DecisionNoConsensus ConsensusDecision = "NO_CONSENSUS"
)

// Direction maps a directional decision onto the tradeable side.
// NoConsensus has no side and maps to Skip.
func (d ConsensusDecision) Direction() Direction {
	switch d {
	case DecisionUp:
		return DirectionUp
	case DecisionDown:
		return DirectionDown
	}
	return DirectionSkip
}

// NoConsensus root causes, kept apart for logging even though the
// decision behavior is identical: do not trade.
const (
	ReasonAllAbstained = "all_abstained"
	ReasonTieNoEdge    = "tie_no_edge"
)

// ConsensusResult is the aggregated outcome across all non-abstaining agents.
type ConsensusResult struct {
	Decision            ConsensusDecision `json:"decision"`
	AggregateConfidence float64           `json:"aggregate_confidence"` // winner's share of directional weight
	UpScore             float64           `json:"up_score"`
	DownScore           float64           `json:"down_score"`
	ParticipatingAgents []string          `json:"participating_agents"` // non-Skip voters, input order
	Reason              string            `json:"reason,omitempty"`
}

// Position is a currently open exposure as reported by the exchange.
// Read-only to this bot; malformed records are skipped by the guard.
type Position struct {
	Title   string  `json:"title"`   // market question, contains the asset symbol
	Outcome string  `json:"outcome"` // typically "Up" or "Down"
	Size    float64 `json:"size"`    // notional stake
}

// Severity ranks conflict verdicts. OpposingCritical outranks Duplicate:
// holding both sides of one market is a guaranteed-loss configuration.
type Severity string

const (
	SeverityNone             Severity = "NONE"
	SeverityDuplicate        Severity = "DUPLICATE"
	SeverityOpposingCritical Severity = "OPPOSING_CRITICAL"
)

// ConflictVerdict is the guard's answer for one proposed trade.
type ConflictVerdict struct {
	Allowed  bool     `json:"allowed"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// Candle is one OHLCV bar of asset price history.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

type Indicators struct {
	SMA map[int]float64
	RSI float64
	BB  struct{ Middle, Upper, Lower float64 }
	ROC float64
}

type OrderReq struct {
	Asset     string
	Direction Direction
	Stake     float64 // notional in quote currency
	Epoch     int64
	Tag       string
}

type OrderResp struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	Shares  float64 `json:"shares,omitempty"`
	Price   float64 `json:"price,omitempty"` // entry price of the outcome token
	Message string  `json:"message,omitempty"`
}

// RoundResult captures everything one decision round produced for an asset.
type RoundResult struct {
	Asset     string          `json:"asset"`
	Epoch     int64           `json:"epoch"`
	Votes     []Vote          `json:"votes"`
	Consensus ConsensusResult `json:"consensus"`
	Verdict   ConflictVerdict `json:"verdict"`
	Orders    []OrderResp     `json:"orders"`
	Reason    string          `json:"reason"`
	Time      int64           `json:"time"`
}
