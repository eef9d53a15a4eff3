// Package guard prevents opening economically inconsistent or
// duplicate positions on the same underlying asset.
package guard

import (
	"fmt"
	"strings"

	"quorum-trading-bot/internal/types"
)

// DefaultDustThreshold treats positions staked below it as closed.
const DefaultDustThreshold = 0.01

// Guard checks a proposed trade against currently open positions.
// It is pure and holds only configuration.
type Guard struct {
	dustThreshold float64
}

func New(dustThreshold float64) *Guard {
	if dustThreshold <= 0 {
		dustThreshold = DefaultDustThreshold
	}
	return &Guard{dustThreshold: dustThreshold}
}

// Check scans positions in input order and returns the verdict for the
// first qualifying position; it does not aggregate across matches.
// The markets here are 15-minute single-outcome rounds, so asset
// exposure is effectively single-directional and the first match is
// definitive.
//
// A position that cannot be classified (dust stake, different asset,
// indeterminate direction) is skipped, never escalated — the guard
// fails open toward "skip this record".
func (g *Guard) Check(positions []types.Position, asset string, proposed types.Direction) types.ConflictVerdict {
	for _, p := range positions {
		if p.Size < g.dustThreshold {
			continue
		}
		if !titleMatchesAsset(p.Title, asset) {
			continue
		}

		held := InferDirection(p)
		if held == types.DirectionSkip {
			continue
		}

		if held == proposed {
			return types.ConflictVerdict{
				Allowed:  false,
				Severity: types.SeverityDuplicate,
				Message:  fmt.Sprintf("Already have %s %s position", asset, directionWord(held)),
			}
		}
		return types.ConflictVerdict{
			Allowed:  false,
			Severity: types.SeverityOpposingCritical,
			Message:  fmt.Sprintf("Already have %s %s position — cannot bet both sides!", asset, directionWord(held)),
		}
	}

	return types.ConflictVerdict{Allowed: true, Severity: types.SeverityNone}
}

func titleMatchesAsset(title, asset string) bool {
	if title == "" || asset == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(asset))
}

func directionWord(d types.Direction) string {
	switch d {
	case types.DirectionUp:
		return "Up"
	case types.DirectionDown:
		return "Down"
	}
	return string(d)
}
