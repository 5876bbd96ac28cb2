package interfaces

import "fundamentals-agent/internal/types"

// ProgressReporter receives checkpoints while a ticker is analyzed.
// Implementations must be safe for concurrent use.
type ProgressReporter interface {
	Update(ticker string, stage types.Stage)
}
