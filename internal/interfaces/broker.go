package interfaces

import (
	"context"

	"quorum-trading-bot/internal/types"
)

type Broker interface {
	LTP(ctx context.Context, asset string) (float64, error)
	RecentCandles(ctx context.Context, asset string, n int) ([]types.Candle, error)
	Positions(ctx context.Context) ([]types.Position, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
