package interfaces

import (
	"context"

	"quorum-trading-bot/internal/types"
)

type Engine interface {
	Step(ctx context.Context, asset string) (*types.RoundResult, error)
}
