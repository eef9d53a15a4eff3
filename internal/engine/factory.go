package engine

import (
	"quorum-trading-bot/internal/interfaces"
	"quorum-trading-bot/internal/store"
)

func New(cfg *store.Config, brk interfaces.Broker, agents []interfaces.Agent) interfaces.Engine {
	return newEngine(cfg, brk, agents)
}
