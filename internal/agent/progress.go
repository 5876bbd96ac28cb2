package agent

import (
	"context"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/types"
)

// LogProgress reports checkpoints through the structured logger at debug level,
// and failures at warn level
type LogProgress struct{}

var _ interfaces.ProgressReporter = LogProgress{}

func (LogProgress) Update(ticker string, stage types.Stage) {
	ctx := context.Background()
	if stage == types.StageFailed {
		logger.Warn(ctx, "Fundamental analysis failed", "ticker", ticker, "stage", string(stage))
		return
	}
	logger.Debug(ctx, "Fundamental analysis progress", "ticker", ticker, "stage", string(stage))
}
