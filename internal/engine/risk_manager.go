package engine

import (
	"context"

	"quorum-trading-bot/internal/logger"
)

// riskManager caps per-trade exposure as a share of the account.
type riskManager struct {
	accountValue float64
}

func newRiskManager(accountValue float64) *riskManager {
	if accountValue <= 0 {
		accountValue = 100.0
	}
	return &riskManager{accountValue: accountValue}
}

// validateTrade checks whether a stake exceeds the allowed risk limit.
// A zero or negative limit disables the check.
func (rm *riskManager) validateTrade(ctx context.Context, asset string, stake, maxRiskPct float64) (exceeded bool, exposure float64) {
	if maxRiskPct <= 0 {
		return false, 0
	}

	exposure = stake
	exposurePct := (exposure / rm.accountValue) * 100.0
	exceeded = exposurePct > maxRiskPct

	if exceeded {
		logger.Warn(ctx, "Trade blocked by risk cap",
			"asset", asset,
			"event", "TRADE_BLOCKED_RISK_CAP",
			"stake", stake,
			"exposure_pct", exposurePct,
			"risk_limit_pct", maxRiskPct,
			"account_value", rm.accountValue,
		)
	}

	return exceeded, exposure
}

func (rm *riskManager) setAccountValue(value float64) {
	rm.accountValue = value
}
