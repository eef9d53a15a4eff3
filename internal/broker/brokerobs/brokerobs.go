package brokerobs

import (
	"context"
	"time"

	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/trace"
	"quorum-trading-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) LTP(ctx context.Context, asset string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.LTP")
	defer span.End()

	price, err := ob.broker.LTP(ctx, asset)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch last traded price", err, "asset", asset)
		return 0, err
	}
	return price, nil
}

func (ob *observableBroker) RecentCandles(ctx context.Context, asset string, n int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.RecentCandles")
	defer span.End()

	start := time.Now()
	candles, err := ob.broker.RecentCandles(ctx, asset, n)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "asset", asset, "requested", n)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched",
		"asset", asset,
		"count", len(candles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return candles, nil
}

func (ob *observableBroker) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Positions")
	defer span.End()

	positions, err := ob.broker.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch open positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Open positions fetched", "count", len(positions))
	return positions, nil
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"asset", req.Asset,
		"direction", req.Direction,
		"stake", req.Stake,
		"epoch", req.Epoch,
		"tag", req.Tag,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order placement failed", err,
			"asset", req.Asset,
			"direction", req.Direction,
			"stake", req.Stake,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed",
		"asset", req.Asset,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
