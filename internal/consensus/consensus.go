// Package consensus aggregates independent directional votes from
// multiple trading agents into a single trade/no-trade decision.
package consensus

import (
	"errors"
	"fmt"

	"quorum-trading-bot/internal/store"
	"quorum-trading-bot/internal/types"
)

// ErrNoVotes is returned when an empty vote set is passed to Aggregate.
// An empty round means no agents ran at all, which is an upstream logic
// error and must stay distinguishable from "agents ran but abstained".
var ErrNoVotes = errors.New("consensus: empty vote set")

// Aggregator computes a weighted consensus over one round of votes.
// It holds only configuration (per-agent weights) and no mutable state,
// so a single instance is safe for concurrent rounds.
type Aggregator struct {
	weights       map[string]float64
	defaultWeight float64
}

// New builds an Aggregator from the configured agent set. Agents absent
// from the config vote with the default weight of 1.
func New(agents []store.AgentConfig) *Aggregator {
	w := make(map[string]float64, len(agents))
	for _, a := range agents {
		w[a.Name] = a.Weight
	}
	return &Aggregator{weights: w, defaultWeight: 1.0}
}

// NewWithWeights builds an Aggregator directly from a name->weight map.
func NewWithWeights(weights map[string]float64) *Aggregator {
	w := make(map[string]float64, len(weights))
	for k, v := range weights {
		w[k] = v
	}
	return &Aggregator{weights: w, defaultWeight: 1.0}
}

// Weight returns the static importance multiplier for an agent.
func (a *Aggregator) Weight(agentName string) float64 {
	if w, ok := a.weights[agentName]; ok {
		return w
	}
	return a.defaultWeight
}

// WeightedScore is the contribution of one vote: confidence x quality x
// configured weight. Skip votes contribute nothing.
func (a *Aggregator) WeightedScore(v types.Vote) float64 {
	if v.Direction == types.DirectionSkip {
		return 0
	}
	return v.Confidence * v.Quality * a.Weight(v.AgentName)
}

// Aggregate renders one round of votes into a ConsensusResult.
//
// Precondition: agent names are unique within one call. Duplicates are
// a caller error and are not validated here.
//
// The direction with the strictly greater summed weighted score wins;
// equal non-zero sums yield NoConsensus — the caller must not trade on
// a tie. Aggregate is pure and idempotent over its input.
func (a *Aggregator) Aggregate(votes []types.Vote) (types.ConsensusResult, error) {
	if len(votes) == 0 {
		return types.ConsensusResult{}, ErrNoVotes
	}

	var upSum, downSum float64
	participants := make([]string, 0, len(votes))

	for _, v := range votes {
		switch v.Direction {
		case types.DirectionUp:
			upSum += a.WeightedScore(v)
			participants = append(participants, v.AgentName)
		case types.DirectionDown:
			downSum += a.WeightedScore(v)
			participants = append(participants, v.AgentName)
		default:
			// abstention
		}
	}

	res := types.ConsensusResult{
		UpScore:             upSum,
		DownScore:           downSum,
		ParticipatingAgents: participants,
	}

	if len(participants) == 0 {
		res.Decision = types.DecisionNoConsensus
		res.Reason = types.ReasonAllAbstained
		return res, nil
	}

	total := upSum + downSum
	switch {
	case upSum > downSum:
		res.Decision = types.DecisionUp
		res.AggregateConfidence = clamp01(upSum / total)
	case downSum > upSum:
		res.Decision = types.DecisionDown
		res.AggregateConfidence = clamp01(downSum / total)
	default:
		res.Decision = types.DecisionNoConsensus
		res.Reason = types.ReasonTieNoEdge
	}

	res.Reason = reasonOrDefault(res)
	return res, nil
}

func reasonOrDefault(r types.ConsensusResult) string {
	if r.Reason != "" {
		return r.Reason
	}
	return fmt.Sprintf("weighted edge %.4f vs %.4f across %d agents",
		r.UpScore, r.DownScore, len(r.ParticipatingAgents))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
