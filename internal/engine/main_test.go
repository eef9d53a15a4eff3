package engine

import (
	"os"
	"testing"

	"quorum-trading-bot/internal/logger"
)

func TestMain(m *testing.M) {
	// Keep test output quiet; tracing off.
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}
